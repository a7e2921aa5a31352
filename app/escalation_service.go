package app

import (
	"context"
	"log"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	apperrors "prodflow/internal/errors"
	"prodflow/internal/telemetry"
	"prodflow/ports"
)

// EscalationService derives the delivery feature of a won experiment.
//
// The child lookup is only a fast path. Two concurrent requests can both pass
// it; the store's uniqueness constraint on (parent_id, phase=delivery) decides,
// and its violation is reported as DUPLICATE_ESCALATION.
type EscalationService struct {
	repo    ports.InitiativeRepository
	metrics *telemetry.Instruments
}

// NewEscalationService creates an escalation service
func NewEscalationService(repo ports.InitiativeRepository, metrics *telemetry.Instruments) *EscalationService {
	return &EscalationService{repo: repo, metrics: metrics}
}

// Escalate creates the feature for experimentID, at most once
func (s *EscalationService) Escalate(ctx context.Context, experimentID core.InitiativeID) (*initiative.Initiative, error) {
	exp, err := s.repo.Get(ctx, experimentID)
	if err != nil {
		s.metrics.Escalation(ctx, "failed")
		return nil, storeError("escalate", err)
	}

	feature, err := initiative.PlanEscalation(exp)
	if err != nil {
		s.metrics.Escalation(ctx, "rejected")
		return nil, ruleError("escalate", err)
	}

	existing, err := s.Children(ctx, exp.ID)
	if err != nil {
		s.metrics.Escalation(ctx, "failed")
		return nil, err
	}
	if len(existing) > 0 {
		s.metrics.Escalation(ctx, "duplicate")
		return nil, apperrors.DuplicateEscalation(exp.ID.String())
	}

	created, err := s.repo.Create(ctx, feature)
	if err != nil {
		if core.IsDuplicateChildError(err) {
			log.Printf("[EscalationService.Escalate] concurrent escalation of %s lost the insert race", exp.ID)
			s.metrics.Escalation(ctx, "duplicate")
			return nil, &apperrors.AppError{
				Code:    apperrors.CodeDuplicateEscalation,
				Message: apperrors.DuplicateEscalation(exp.ID.String()).Message,
				Cause:   err,
			}
		}
		s.metrics.Escalation(ctx, "failed")
		return nil, storeError("escalate", err)
	}

	s.metrics.Escalation(ctx, "created")
	log.Printf("[EscalationService.Escalate] experiment %s escalated to feature %s", exp.ID, created.ID)
	return created, nil
}

// Children returns the delivery-phase initiatives derived from experimentID
func (s *EscalationService) Children(ctx context.Context, experimentID core.InitiativeID) ([]*initiative.Initiative, error) {
	items, err := s.repo.List(ctx, initiative.Filter{ParentID: experimentID, Phase: initiative.PhaseDelivery})
	if err != nil {
		return nil, storeError("list escalated children", err)
	}
	return items, nil
}
