// Package workflow applies admin review actions to applicants. The workflow
// is deliberately permissive: any action is accepted from any current state,
// so admins can re-approve, re-reject, or pull an applicant back into
// screening without ceremony.
package workflow

import (
	"context"
	"fmt"
	"time"

	"crewport/internal/store"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
)

// Action is an admin review verb. Each action resolves to a single target
// status.
type Action string

const (
	ActionScreen  Action = "screen"
	ActionVerify  Action = "verify"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionFlag    Action = "flag"
)

// UnknownActionError rejects an action the applicant variant does not
// support, such as flagging a staff applicant.
type UnknownActionError struct {
	Action Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unsupported review action %q", e.Action)
}

var crewActions = map[Action]types.ReviewStatus{
	ActionScreen:  types.StatusScreening,
	ActionVerify:  types.StatusDocumentsVerified,
	ActionApprove: types.StatusApproved,
	ActionReject:  types.StatusRejected,
	ActionFlag:    types.StatusFlagged,
}

// Staff applicants move through a reduced lifecycle with no document
// verification step and no flagged state.
var staffActions = map[Action]types.ReviewStatus{
	ActionScreen:  types.StatusScreening,
	ActionApprove: types.StatusApproved,
	ActionReject:  types.StatusRejected,
}

type Service struct {
	logger *logrus.Logger
	crew   store.CrewStore
	staff  store.StaffStore

	// now is swappable so tests can pin the updatedAt bump.
	now func() time.Time
}

func NewService(logger *logrus.Logger, crew store.CrewStore, staff store.StaffStore) *Service {
	return &Service{
		logger: logger,
		crew:   crew,
		staff:  staff,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ReviewCrew applies an admin action to a crew member. The supplied note
// replaces any existing notes; notes are overwritten, never appended. Screen
// notes live in their own column so they survive later approve/reject notes.
func (s *Service) ReviewCrew(ctx context.Context, crewID int64, action Action, note string) (types.ReviewStatus, error) {
	status, ok := crewActions[action]
	if !ok {
		return 0, &UnknownActionError{Action: action}
	}

	update := s.crew.UpdateCrewReview
	if action == ActionScreen {
		update = s.crew.UpdateCrewScreening
	}

	if err := update(ctx, crewID, status, note, s.now()); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"crew_id": crewID,
		"action":  action,
		"status":  status.Name(),
	}).Info("crew review updated")

	return status, nil
}

// ReviewStaff applies an admin action to a staff applicant.
func (s *Service) ReviewStaff(ctx context.Context, staffID int64, action Action, note string) (types.ReviewStatus, error) {
	status, ok := staffActions[action]
	if !ok {
		return 0, &UnknownActionError{Action: action}
	}

	if err := s.staff.UpdateStaffReview(ctx, staffID, status, note, s.now()); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"staff_id": staffID,
		"action":   action,
		"status":   status.Name(),
	}).Info("staff review updated")

	return status, nil
}

// CrewActions lists the actions valid for crew members in dashboard order.
func CrewActions() []Action {
	return []Action{ActionScreen, ActionVerify, ActionApprove, ActionReject, ActionFlag}
}

// StaffActions lists the actions valid for staff applicants.
func StaffActions() []Action {
	return []Action{ActionScreen, ActionApprove, ActionReject}
}
