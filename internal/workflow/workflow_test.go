package workflow

import (
	"context"
	"io"
	"testing"
	"time"

	"crewport/internal/store"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.MemoryCrewStore, *store.MemoryStaffStore) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	crew := store.NewMemoryCrewStore(nil)
	staff := store.NewMemoryStaffStore()
	return NewService(logger, crew, staff), crew, staff
}

func TestFlagThenApproveOverwritesNotes(t *testing.T) {
	ctx := context.Background()
	svc, crew, _ := newTestService(t)

	m := &types.CrewMember{Name: "Ravi Kumar", Rank: "Bosun", Passport: "K5550001"}
	require.NoError(t, crew.CreateCrew(ctx, m))
	require.Equal(t, types.StatusRegistered, m.Status)

	status, err := svc.ReviewCrew(ctx, m.ID, ActionFlag, "passport scan illegible")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFlagged, status)

	got, err := crew.CrewByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFlagged, got.Status)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, "passport scan illegible", *got.AdminNotes)

	status, err = svc.ReviewCrew(ctx, m.ID, ActionApprove, "rescan received, cleared")
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, status)

	got, err = crew.CrewByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, got.Status)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, "rescan received, cleared", *got.AdminNotes, "notes replace, never append")
}

func TestScreenNotesKeptSeparateFromAdminNotes(t *testing.T) {
	ctx := context.Background()
	svc, crew, _ := newTestService(t)

	m := &types.CrewMember{Name: "Ravi Kumar", Rank: "Bosun", Passport: "K5550001"}
	require.NoError(t, crew.CreateCrew(ctx, m))

	_, err := svc.ReviewCrew(ctx, m.ID, ActionScreen, "references pending")
	require.NoError(t, err)

	_, err = svc.ReviewCrew(ctx, m.ID, ActionApprove, "cleared for deployment")
	require.NoError(t, err)

	got, err := crew.CrewByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ScreeningNotes)
	assert.Equal(t, "references pending", *got.ScreeningNotes)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, "cleared for deployment", *got.AdminNotes)
}

func TestAnyActionAcceptedFromAnyState(t *testing.T) {
	ctx := context.Background()
	svc, crew, _ := newTestService(t)

	m := &types.CrewMember{Name: "Ravi Kumar", Rank: "Bosun", Passport: "K5550001"}
	require.NoError(t, crew.CreateCrew(ctx, m))

	// Rejected is not terminal here; the permissive workflow lets an admin
	// walk an applicant through any sequence.
	sequence := []struct {
		action Action
		want   types.ReviewStatus
	}{
		{ActionReject, types.StatusRejected},
		{ActionScreen, types.StatusScreening},
		{ActionApprove, types.StatusApproved},
		{ActionApprove, types.StatusApproved},
		{ActionVerify, types.StatusDocumentsVerified},
	}

	for _, step := range sequence {
		status, err := svc.ReviewCrew(ctx, m.ID, step.action, "")
		require.NoError(t, err)
		assert.Equal(t, step.want, status)
	}
}

func TestReviewBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	svc, crew, _ := newTestService(t)

	m := &types.CrewMember{Name: "Ravi Kumar", Rank: "Bosun", Passport: "K5550001"}
	require.NoError(t, crew.CreateCrew(ctx, m))

	pinned := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	svc.now = func() time.Time { return pinned }

	_, err := svc.ReviewCrew(ctx, m.ID, ActionScreen, "")
	require.NoError(t, err)

	got, err := crew.CrewByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, pinned, got.UpdatedAt)
}

func TestStaffRejectsCrewOnlyActions(t *testing.T) {
	ctx := context.Background()
	svc, _, staff := newTestService(t)

	m := &types.StaffMember{FullName: "Meera Shah", PositionApplying: "Crewing Executive", Department: "Operations"}
	require.NoError(t, staff.CreateStaff(ctx, m))

	for _, action := range []Action{ActionFlag, ActionVerify, Action("promote")} {
		_, err := svc.ReviewStaff(ctx, m.ID, action, "")

		var unknown *UnknownActionError
		require.ErrorAs(t, err, &unknown, "action %q", action)
	}

	status, err := svc.ReviewStaff(ctx, m.ID, ActionApprove, "start monday")
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, status)
}

func TestUnknownCrewActionRejected(t *testing.T) {
	ctx := context.Background()
	svc, crew, _ := newTestService(t)

	m := &types.CrewMember{Name: "Ravi Kumar", Rank: "Bosun", Passport: "K5550001"}
	require.NoError(t, crew.CreateCrew(ctx, m))

	_, err := svc.ReviewCrew(ctx, m.ID, Action("archive"), "")

	var unknown *UnknownActionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Action("archive"), unknown.Action)
}
