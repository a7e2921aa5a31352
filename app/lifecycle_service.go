package app

import (
	"context"
	"fmt"
	"log"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/internal/announce"
	apperrors "prodflow/internal/errors"
	"prodflow/internal/telemetry"
	"prodflow/ports"
)

// LifecycleService validates and applies phase/status transitions and field edits.
// Every mutation is planned against the current record and written with a
// single Update, so a rejected request leaves the store untouched.
type LifecycleService struct {
	repo      ports.InitiativeRepository
	owners    ports.OwnerValidator
	publisher ports.AnnouncementPublisher
	composer  *announce.Composer
	sweeper   *ReconciliationService
	metrics   *telemetry.Instruments
}

// LifecycleDeps groups the collaborators of LifecycleService. Owners, Sweeper
// and Metrics are optional.
type LifecycleDeps struct {
	Repo      ports.InitiativeRepository
	Owners    ports.OwnerValidator
	Publisher ports.AnnouncementPublisher
	Composer  *announce.Composer
	Sweeper   *ReconciliationService
	Metrics   *telemetry.Instruments
}

// NewLifecycleService creates a lifecycle service
func NewLifecycleService(deps LifecycleDeps) *LifecycleService {
	composer := deps.Composer
	if composer == nil {
		composer = announce.NewComposer("", nil)
	}
	return &LifecycleService{
		repo:      deps.Repo,
		owners:    deps.Owners,
		publisher: deps.Publisher,
		composer:  composer,
		sweeper:   deps.Sweeper,
		metrics:   deps.Metrics,
	}
}

// FinalizeResult carries the finalized initiative and the announcement requested for it
type FinalizeResult struct {
	Initiative   *initiative.Initiative `json:"initiative"`
	Announcement ports.Announcement     `json:"announcement"`
}

// Create validates a draft and persists it
func (s *LifecycleService) Create(ctx context.Context, draft initiative.Draft) (*initiative.Initiative, error) {
	it, err := initiative.NewFromDraft(draft)
	if err != nil {
		s.metrics.Rejected(ctx, "create", ruleName(err))
		return nil, ruleError("create initiative", err)
	}
	if !it.OwnerID.IsEmpty() {
		if err := s.validateOwner(ctx, it.OwnerID); err != nil {
			return nil, apperrors.Wrap(err, "create initiative")
		}
	}

	created, err := s.repo.Create(ctx, it)
	if err != nil {
		return nil, storeError("create initiative", err)
	}
	return created, nil
}

// Get loads one initiative
func (s *LifecycleService) Get(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("get initiative", err)
	}
	return it, nil
}

// List returns initiatives matching filter
func (s *LifecycleService) List(ctx context.Context, filter initiative.Filter) ([]*initiative.Initiative, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list initiatives", err)
	}
	return items, nil
}

// ListBoard loads one phase lane. Loading the delivery lane also runs the
// reconciliation sweep over the loaded items and returns them repaired.
func (s *LifecycleService) ListBoard(ctx context.Context, phase initiative.Phase) ([]*initiative.Initiative, *SweepReport, error) {
	if !phase.IsValid() {
		return nil, nil, apperrors.Validationf("unknown phase %q", phase)
	}
	items, err := s.List(ctx, initiative.Filter{Phase: phase})
	if err != nil {
		return nil, nil, err
	}
	if phase != initiative.PhaseDelivery || s.sweeper == nil {
		return items, nil, nil
	}

	report := s.sweeper.Repair(ctx, items)
	repaired := make(map[core.InitiativeID]bool, len(report.Repaired))
	for _, id := range report.Repaired {
		repaired[id] = true
	}
	for _, it := range items {
		if repaired[it.ID] {
			it.Status = initiative.StatusDesign
		}
	}
	return items, report, nil
}

// UpdateFields applies a free-form edit. Phase, status and parent are never touched.
func (s *LifecycleService) UpdateFields(ctx context.Context, id core.InitiativeID, edit initiative.Edit) (*initiative.Initiative, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("update initiative", err)
	}

	patch, err := initiative.PlanEdit(cur, edit)
	if err != nil {
		s.metrics.Rejected(ctx, "edit", ruleName(err))
		return nil, ruleError("update initiative", err)
	}
	if patch.OwnerID != nil && !patch.OwnerID.IsEmpty() && *patch.OwnerID != cur.OwnerID {
		if err := s.validateOwner(ctx, *patch.OwnerID); err != nil {
			return nil, apperrors.Wrap(err, "update initiative")
		}
	}
	if patch.IsEmpty() {
		return cur, nil
	}
	return s.write(ctx, "update initiative", id, patch)
}

// Delete removes an initiative permanently
func (s *LifecycleService) Delete(ctx context.Context, id core.InitiativeID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete initiative", err)
	}
	return nil
}

// Promote moves a backlog item into discovery or delivery in status design.
// A non-empty window replaces the stored scheduling window.
func (s *LifecycleService) Promote(ctx context.Context, id core.InitiativeID, dest initiative.Phase, window initiative.Period) (*initiative.Initiative, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("promote", err)
	}

	patch, err := initiative.PlanPromote(cur, dest, window)
	if err != nil {
		s.metrics.Rejected(ctx, "promote", ruleName(err))
		return nil, ruleError("promote", err)
	}
	if err := s.validateOwner(ctx, cur.OwnerID); err != nil {
		return nil, apperrors.Wrap(err, "promote")
	}

	updated, err := s.write(ctx, "promote", id, patch)
	if err != nil {
		return nil, err
	}
	s.metrics.Transition(ctx, "promote")
	return updated, nil
}

// Transition changes the status of a discovery or delivery item. Any working
// status may follow any other.
func (s *LifecycleService) Transition(ctx context.Context, id core.InitiativeID, to initiative.Status) (*initiative.Initiative, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("transition", err)
	}

	patch, err := initiative.PlanTransition(cur, to)
	if err != nil {
		s.metrics.Rejected(ctx, "transition", ruleName(err))
		return nil, ruleError("transition", err)
	}
	if patch.IsEmpty() {
		return cur, nil
	}

	updated, err := s.write(ctx, "transition", id, patch)
	if err != nil {
		return nil, err
	}
	s.metrics.Transition(ctx, "transition")
	return updated, nil
}

// ReturnToBacklog undoes a promotion, clearing the scheduling window
func (s *LifecycleService) ReturnToBacklog(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("return to backlog", err)
	}

	patch, err := initiative.PlanReturnToBacklog(cur)
	if err != nil {
		s.metrics.Rejected(ctx, "return_to_backlog", ruleName(err))
		return nil, ruleError("return to backlog", err)
	}

	updated, err := s.write(ctx, "return to backlog", id, patch)
	if err != nil {
		return nil, err
	}
	s.metrics.Transition(ctx, "return_to_backlog")
	return updated, nil
}

// Finalize moves a completed item to the terminal phase and publishes its
// announcement. The phase write happens first; when publishing fails the
// result is still returned alongside an EXTERNAL_SERVICE_ERROR.
func (s *LifecycleService) Finalize(ctx context.Context, id core.InitiativeID) (*FinalizeResult, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("finalize", err)
	}

	patch, err := initiative.PlanFinalize(cur)
	if err != nil {
		s.metrics.Rejected(ctx, "finalize", ruleName(err))
		return nil, ruleError("finalize", err)
	}

	updated, err := s.write(ctx, "finalize", id, patch)
	if err != nil {
		return nil, err
	}
	s.metrics.Transition(ctx, "finalize")

	result := &FinalizeResult{
		Initiative:   updated,
		Announcement: s.composer.Compose(updated),
	}
	if s.publisher == nil {
		return result, nil
	}
	if err := s.publisher.Publish(ctx, result.Announcement); err != nil {
		log.Printf("[LifecycleService.Finalize] WARNING: announcement for %s not published: %v", id, err)
		return result, apperrors.Wrap(apperrors.ExternalServiceError("announcement", err), "finalize")
	}
	return result, nil
}

// write applies patch. A delivery-child conflict here comes from moving a
// second escalated feature into delivery, so it is reported as a rule
// violation of the move, not as a duplicate escalation.
func (s *LifecycleService) write(ctx context.Context, op string, id core.InitiativeID, patch initiative.Patch) (*initiative.Initiative, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if core.IsDuplicateChildError(err) {
			s.metrics.Rejected(ctx, op, string(initiative.RuleDeliveryChild))
			return nil, &apperrors.AppError{
				Code:    apperrors.CodeValidationError,
				Message: op,
				Cause: &initiative.Violation{
					Rule:   initiative.RuleDeliveryChild,
					Reason: fmt.Sprintf("initiative %s cannot enter delivery: its experiment already has a delivery feature", id),
				},
			}
		}
		return nil, storeError(op, err)
	}
	return updated, nil
}

func (s *LifecycleService) validateOwner(ctx context.Context, owner core.MemberID) error {
	if s.owners == nil {
		return nil
	}
	return s.owners.ValidateOwner(ctx, owner)
}
