package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Domain-specific ID types
type (
	InitiativeID ID
	MemberID     ID
	ProjectID    ID
)

// String conversions for domain IDs
func (id InitiativeID) String() string { return ID(id).String() }
func (id MemberID) String() string     { return ID(id).String() }
func (id ProjectID) String() string    { return ID(id).String() }

// IsEmpty reports whether the initiative ID is blank
func (id InitiativeID) IsEmpty() bool { return ID(id).IsEmpty() }

// IsEmpty reports whether the member ID is blank
func (id MemberID) IsEmpty() bool { return ID(id).IsEmpty() }

// NewInitiativeID creates a fresh time-ordered initiative identifier
func NewInitiativeID() InitiativeID { return InitiativeID(NewID()) }

// ParseInitiativeID parses a string into InitiativeID
func ParseInitiativeID(s string) (InitiativeID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("initiative ID cannot be empty")
	}
	return InitiativeID(strings.TrimSpace(s)), nil
}

// ParseMemberID parses a string into MemberID
func ParseMemberID(s string) (MemberID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("member ID cannot be empty")
	}
	return MemberID(strings.TrimSpace(s)), nil
}
