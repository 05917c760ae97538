// Package catalog holds the static taxonomy of crew document types. It is
// the single source of truth for which documents exist, which category each
// belongs to, and which are required for a complete profile.
package catalog

import "crewport/pkg/types"

type Category struct {
	ID    types.DocumentCategory
	Name  string
	Specs []types.DocumentTypeSpec
}

var categories = []Category{
	{
		ID:   types.CategoryIdentity,
		Name: "Identity Documents",
		Specs: []types.DocumentTypeSpec{
			{Type: types.DocTypePassport, Name: "Passport Copy", Required: true},
			{Type: types.DocTypeGovernmentID, Name: "Government ID (Aadhaar / PAN / SSN)", Required: false},
			{Type: types.DocTypePhoto, Name: "Photo (Passport Size)", Required: true},
		},
	},
	{
		ID:   types.CategoryMedical,
		Name: "Medical Documents",
		Specs: []types.DocumentTypeSpec{
			{Type: types.DocTypeMedicalCert, Name: "Medical Certificate", Required: true},
			{Type: types.DocTypeYellowFever, Name: "Yellow Fever Certificate", Required: false},
		},
	},
	{
		ID:   types.CategoryProfessional,
		Name: "Professional Documents",
		Specs: []types.DocumentTypeSpec{
			{Type: types.DocTypeCDC, Name: "CDC (Seaman Book)", Required: true},
			{Type: types.DocTypeCOCCOP, Name: "COC/COP Certificate", Required: true},
			{Type: types.DocTypeSTCW, Name: "STCW Certificates", Required: true},
			{Type: types.DocTypeGMDSS, Name: "GMDSS/DCE Certificate", Required: false},
		},
	},
	{
		ID:   types.CategoryOther,
		Name: "Other Documents",
		Specs: []types.DocumentTypeSpec{
			{Type: types.DocTypeResume, Name: "Resume/CV", Required: true},
			{Type: types.DocTypeSEAAgreement, Name: "SEA Agreement", Required: false},
		},
	},
}

// Categories returns the ordered category list. Callers must treat the
// returned slices as read-only.
func Categories() []Category {
	return categories
}

// SpecFor looks up the catalog entry for a document type.
func SpecFor(t types.DocumentType) (types.DocumentTypeSpec, bool) {
	for _, c := range categories {
		for _, spec := range c.Specs {
			if spec.Type == t {
				return spec, true
			}
		}
	}
	return types.DocumentTypeSpec{}, false
}

// CategoryOf resolves the category a document type belongs to.
func CategoryOf(t types.DocumentType) (types.DocumentCategory, bool) {
	for _, c := range categories {
		for _, spec := range c.Specs {
			if spec.Type == t {
				return c.ID, true
			}
		}
	}
	return "", false
}

// RequiredCount reports how many document types are required across all
// categories.
func RequiredCount() int {
	n := 0
	for _, c := range categories {
		for _, spec := range c.Specs {
			if spec.Required {
				n++
			}
		}
	}
	return n
}
