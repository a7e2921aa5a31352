package initiative

import (
	"errors"
	"fmt"
)

// Rule names a lifecycle precondition so callers and tests can tell violations apart
type Rule string

const (
	RuleTerminal       Rule = "terminal"
	RuleOwnerRequired  Rule = "owner_required"
	RuleWindowRequired Rule = "window_required"
	RuleSourcePhase    Rule = "source_phase"
	RuleSourceStatus   Rule = "source_status"
	RuleVocabulary     Rule = "status_vocabulary"
	RuleDestination    Rule = "destination"
	RuleField          Rule = "field"
	RuleNotEscalatable Rule = "not_escalatable"
	RuleDeliveryChild  Rule = "delivery_child"
)

// Violation is returned when a requested change breaks a lifecycle rule.
// Nothing is applied when a Violation is returned.
type Violation struct {
	Rule   Rule
	Reason string
}

func (v *Violation) Error() string {
	return v.Reason
}

func violationf(rule Rule, format string, args ...interface{}) error {
	return &Violation{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// AsViolation extracts a Violation from err
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// HasRule reports whether err is a Violation of the given rule
func HasRule(err error, rule Rule) bool {
	v, ok := AsViolation(err)
	return ok && v.Rule == rule
}
