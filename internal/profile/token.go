// Package profile issues and verifies the shareable profile tokens that let
// a crew member reach their own profile without an account.
package profile

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crewport/internal/store"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
)

type Issuer struct {
	logger *logrus.Logger
	crew   store.CrewStore
}

func NewIssuer(logger *logrus.Logger, crew store.CrewStore) *Issuer {
	return &Issuer{
		logger: logger,
		crew:   crew,
	}
}

// Issue mints the profile token for a crew member and persists it. A member
// already holding a token keeps it; the token never rotates once set.
//
// The token is the hex sha256 of the member id, their passport number, and
// 32 fresh random bytes, so it is unguessable even with the id and passport
// in hand.
func (i *Issuer) Issue(ctx context.Context, m *types.CrewMember) (string, error) {
	if m.HasProfileToken() {
		return *m.ProfileToken, nil
	}

	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to read token entropy: %w", err)
	}

	seed := fmt.Sprintf("%d_%s_%s", m.ID, m.Passport, hex.EncodeToString(entropy))
	sum := sha256.Sum256([]byte(seed))
	token := hex.EncodeToString(sum[:])

	if err := i.crew.SetProfileToken(ctx, m.ID, token); err != nil {
		if errors.Is(err, types.ErrProfileTokenSet) {
			// Someone beat us to it (or the caller held a stale copy of
			// the member); the stored token wins.
			stored, readErr := i.crew.CrewByID(ctx, m.ID)
			if readErr != nil {
				return "", readErr
			}
			m.ProfileToken = stored.ProfileToken
			return *stored.ProfileToken, nil
		}
		return "", err
	}
	m.ProfileToken = &token

	i.logger.WithField("crew_id", m.ID).Info("profile token issued")

	return token, nil
}

// Authorize resolves a profile reference of the form "{id}-{token}" to the
// crew member it names. Any failure, whether the reference is malformed, the
// member does not exist, no token was ever issued, or the token does not
// match, comes back as types.ErrProfileAccessDenied so a caller probing ids
// learns nothing.
func (i *Issuer) Authorize(ctx context.Context, ref string) (*types.CrewMember, error) {
	id, token, ok := splitRef(ref)
	if !ok {
		return nil, types.ErrProfileAccessDenied
	}

	m, err := i.crew.CrewByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrCrewNotFound) {
			return nil, types.ErrProfileAccessDenied
		}
		return nil, err
	}

	if !m.HasProfileToken() {
		return nil, types.ErrProfileAccessDenied
	}

	if subtle.ConstantTimeCompare([]byte(*m.ProfileToken), []byte(token)) != 1 {
		return nil, types.ErrProfileAccessDenied
	}

	return m, nil
}

// splitRef parses "{id}-{token}". The token itself is hex and never contains
// a dash, so splitting on the first dash is unambiguous.
func splitRef(ref string) (int64, string, bool) {
	idPart, token, found := strings.Cut(ref, "-")
	if !found || idPart == "" || token == "" {
		return 0, "", false
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}

	return id, token, true
}
