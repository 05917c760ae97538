package profile

import (
	"context"
	"fmt"
	"io"
	"testing"

	"crewport/internal/store"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) (*Issuer, *store.MemoryCrewStore) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	crew := store.NewMemoryCrewStore(nil)
	return NewIssuer(logger, crew), crew
}

func registerCrew(t *testing.T, crew *store.MemoryCrewStore, passport string) *types.CrewMember {
	t.Helper()

	m := &types.CrewMember{Name: "Arjun Nair", Rank: "Chief Officer", Passport: passport}
	require.NoError(t, crew.CreateCrew(context.Background(), m))
	return m
}

func TestIssueMintsHexToken(t *testing.T) {
	ctx := context.Background()
	issuer, crew := newTestIssuer(t)
	m := registerCrew(t, crew, "Z1234567")

	token, err := issuer.Issue(ctx, m)
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", token)
	require.NotNil(t, m.ProfileToken)
	assert.Equal(t, token, *m.ProfileToken)

	stored, err := crew.CrewByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfileToken)
	assert.Equal(t, token, *stored.ProfileToken)
}

func TestIssueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	issuer, crew := newTestIssuer(t)
	m := registerCrew(t, crew, "Z1234567")

	first, err := issuer.Issue(ctx, m)
	require.NoError(t, err)

	second, err := issuer.Issue(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIssueNeverRotatesAStoredToken(t *testing.T) {
	ctx := context.Background()
	issuer, crew := newTestIssuer(t)
	m := registerCrew(t, crew, "Z1234567")

	first, err := issuer.Issue(ctx, m)
	require.NoError(t, err)

	// A caller holding a stale copy of the member (no token on it) must
	// get the stored token back, not mint a replacement.
	stale := &types.CrewMember{ID: m.ID, Passport: m.Passport}
	second, err := issuer.Issue(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NotNil(t, stale.ProfileToken)
	assert.Equal(t, first, *stale.ProfileToken)

	stored, err := crew.CrewByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfileToken)
	assert.Equal(t, first, *stored.ProfileToken)
}

func TestIssueTokensAreDistinctAcrossMembers(t *testing.T) {
	ctx := context.Background()
	issuer, crew := newTestIssuer(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		m := registerCrew(t, crew, fmt.Sprintf("P%07d", i))
		token, err := issuer.Issue(ctx, m)
		require.NoError(t, err)
		assert.False(t, seen[token], "token reuse across members")
		seen[token] = true
	}
}

func TestAuthorizeAcceptsIssuedReference(t *testing.T) {
	ctx := context.Background()
	issuer, crew := newTestIssuer(t)
	m := registerCrew(t, crew, "Z1234567")

	token, err := issuer.Issue(ctx, m)
	require.NoError(t, err)

	got, err := issuer.Authorize(ctx, fmt.Sprintf("%d-%s", m.ID, token))
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Passport, got.Passport)
}

func TestAuthorizeDeniesUniformly(t *testing.T) {
	ctx := context.Background()
	issuer, crew := newTestIssuer(t)
	m := registerCrew(t, crew, "Z1234567")

	token, err := issuer.Issue(ctx, m)
	require.NoError(t, err)

	// A member who never received a token is just as unreachable.
	bare := registerCrew(t, crew, "Z7654321")

	refs := []string{
		"",
		"garbage",
		"-" + token,
		fmt.Sprintf("%d-", m.ID),
		fmt.Sprintf("%d-wrongtoken", m.ID),
		fmt.Sprintf("999-%s", token),
		fmt.Sprintf("%d-%s", bare.ID, token),
	}

	for _, ref := range refs {
		_, err := issuer.Authorize(ctx, ref)
		assert.ErrorIs(t, err, types.ErrProfileAccessDenied, "ref %q", ref)
	}
}
