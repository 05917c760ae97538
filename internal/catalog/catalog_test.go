package catalog

import (
	"testing"

	"crewport/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesOrderedAndComplete(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 4)

	assert.Equal(t, types.CategoryIdentity, cats[0].ID)
	assert.Equal(t, types.CategoryMedical, cats[1].ID)
	assert.Equal(t, types.CategoryProfessional, cats[2].ID)
	assert.Equal(t, types.CategoryOther, cats[3].ID)

	total := 0
	for _, c := range cats {
		assert.NotEmpty(t, c.Name)
		total += len(c.Specs)
	}
	assert.Equal(t, 11, total)
}

func TestRequiredFlags(t *testing.T) {
	required := map[types.DocumentType]bool{
		types.DocTypePassport:    true,
		types.DocTypePhoto:       true,
		types.DocTypeMedicalCert: true,
		types.DocTypeCDC:         true,
		types.DocTypeCOCCOP:      true,
		types.DocTypeSTCW:        true,
		types.DocTypeResume:      true,

		types.DocTypeGovernmentID: false,
		types.DocTypeYellowFever:  false,
		types.DocTypeGMDSS:        false,
		types.DocTypeSEAAgreement: false,
	}

	for docType, want := range required {
		spec, ok := SpecFor(docType)
		require.True(t, ok, "missing spec for %s", docType)
		assert.Equal(t, want, spec.Required, "required flag for %s", docType)
	}

	assert.Equal(t, 7, RequiredCount())
}

func TestCategoryOf(t *testing.T) {
	cat, ok := CategoryOf(types.DocTypeCDC)
	require.True(t, ok)
	assert.Equal(t, types.CategoryProfessional, cat)

	_, ok = CategoryOf(types.DocumentType("bogus"))
	assert.False(t, ok)
}
