package types

import "errors"

var (
	ErrCrewNotFound     = errors.New("crew member not found")
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrAdminNotFound    = errors.New("admin not found")

	// ErrPassportInUse surfaces the passport uniqueness constraint.
	ErrPassportInUse = errors.New("passport number already registered")

	// ErrProfileTokenInUse surfaces the profile_token uniqueness constraint.
	// With 256 bits of hash output a collision is effectively impossible;
	// the constraint is the authoritative guard regardless.
	ErrProfileTokenInUse = errors.New("profile token already in use")

	// ErrProfileTokenSet means the member already holds a token; the stored
	// value wins and callers should re-read it rather than overwrite.
	ErrProfileTokenSet = errors.New("profile token already set")

	// ErrProfileAccessDenied is returned for BOTH an unknown applicant and a
	// token mismatch so callers cannot enumerate applicant ids.
	ErrProfileAccessDenied = errors.New("profile access denied")
)
