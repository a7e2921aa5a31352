package app

import (
	"context"
	"strings"

	"prodflow/domain/core"
	apperrors "prodflow/internal/errors"
	"prodflow/ports"
)

// RosterOwnerValidator accepts owners listed on the member roster.
// With Strict off it only checks that an owner reference is present.
type RosterOwnerValidator struct {
	roster ports.MemberRoster
	Strict bool
}

var _ ports.OwnerValidator = (*RosterOwnerValidator)(nil)

// NewRosterOwnerValidator creates a validator backed by roster
func NewRosterOwnerValidator(roster ports.MemberRoster, strict bool) *RosterOwnerValidator {
	return &RosterOwnerValidator{roster: roster, Strict: strict}
}

// ValidateOwner checks owner against the roster
func (v *RosterOwnerValidator) ValidateOwner(ctx context.Context, owner core.MemberID) error {
	if strings.TrimSpace(string(owner)) == "" {
		return apperrors.ValidationError("owner is required")
	}
	if !v.Strict || v.roster == nil {
		return nil
	}

	members, err := v.roster.List(ctx)
	if err != nil {
		return apperrors.ExternalServiceError("member roster", err)
	}
	for _, m := range members {
		if m.ID == owner {
			return nil
		}
	}
	return apperrors.Validationf("owner %s is not on the member roster", owner)
}
