package initiative

import (
	"strings"

	"prodflow/domain/core"
)

// workingStatuses is the vocabulary shared by discovery and delivery
var workingStatuses = []Status{StatusDesign, StatusRunning, StatusCompleted, StatusPaused}

// StatusesFor returns the status vocabulary valid in phase p
func StatusesFor(p Phase) []Status {
	switch p {
	case PhaseBacklog:
		return []Status{StatusPending}
	case PhaseDiscovery, PhaseDelivery:
		return append([]Status(nil), workingStatuses...)
	case PhaseFinalized:
		// finalize is only reachable from completed, and the status is frozen there
		return []Status{StatusCompleted}
	}
	return nil
}

// StatusAllowed reports whether s belongs to the vocabulary of p
func StatusAllowed(p Phase, s Status) bool {
	for _, candidate := range StatusesFor(p) {
		if candidate == s {
			return true
		}
	}
	return false
}

// Draft carries the caller-supplied fields of a new initiative
type Draft struct {
	Title            string          `json:"title"`
	ProblemStatement string          `json:"problem_statement,omitempty"`
	ItemType         ItemType        `json:"item_type"`
	Phase            Phase           `json:"phase,omitempty"`
	RICE             *RICE           `json:"rice,omitempty"`
	OwnerID          core.MemberID   `json:"owner_id,omitempty"`
	ProjectID        core.ProjectID  `json:"project_id,omitempty"`
	Period           Period          `json:"period,omitempty"`
	ExperimentData   *ExperimentData `json:"experiment_data,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
}

// NewFromDraft validates d and builds the initiative to hand to the store.
// Items start in backlog.pending; a draft that names discovery or delivery is
// created in-context in <phase>.design and must satisfy the promotion rules.
func NewFromDraft(d Draft) (*Initiative, error) {
	phase := d.Phase
	if phase == "" {
		phase = PhaseBacklog
	}

	rice := DefaultRICE
	if d.RICE != nil {
		rice = *d.RICE
	}

	it := &Initiative{
		Title:            strings.TrimSpace(d.Title),
		ProblemStatement: d.ProblemStatement,
		ItemType:         d.ItemType,
		Phase:            PhaseBacklog,
		Status:           StatusPending,
		RICE:             rice,
		OwnerID:          core.MemberID(strings.TrimSpace(string(d.OwnerID))),
		ProjectID:        d.ProjectID,
		Tags:             NormalizeTags(d.Tags),
	}
	it.PeriodType, it.PeriodValue = BuildPeriod(d.Period)

	if d.ExperimentData != nil {
		ed := *d.ExperimentData
		it.ExperimentData = &ed
	} else if d.ItemType == ItemTypeExperiment {
		it.ExperimentData = &ExperimentData{Result: ResultPending}
	}

	switch phase {
	case PhaseBacklog:
	case PhaseDiscovery, PhaseDelivery:
		if err := checkPromotion(it, phase, d.Period); err != nil {
			return nil, err
		}
		it.Phase = phase
		it.Status = StatusDesign
	default:
		return nil, violationf(RuleDestination, "initiatives cannot be created in phase %q", phase)
	}

	if err := Validate(it); err != nil {
		return nil, err
	}
	return it, nil
}

// Validate checks the entity-level invariants of i
func Validate(i *Initiative) error {
	if strings.TrimSpace(i.Title) == "" {
		return violationf(RuleField, "title is required")
	}
	if !i.ItemType.IsValid() {
		return violationf(RuleField, "invalid item_type %q", i.ItemType)
	}
	if !i.Phase.IsValid() {
		return violationf(RuleField, "invalid phase %q", i.Phase)
	}
	if !StatusAllowed(i.Phase, i.Status) {
		return violationf(RuleVocabulary, "status %q is not valid in phase %s", i.Status, i.Phase)
	}
	if err := ValidateRICE(i.RICE); err != nil {
		return &Violation{Rule: RuleField, Reason: err.Error()}
	}
	if i.Phase.IsActive() && i.OwnerID.IsEmpty() {
		return violationf(RuleOwnerRequired, "%s items must have an owner", i.Phase)
	}
	return ValidateExperimentData(i.ExperimentData)
}

// ValidateExperimentData checks the enumerated fields of the experiment record
func ValidateExperimentData(e *ExperimentData) error {
	if e == nil {
		return nil
	}
	if !e.Result.IsValid() {
		return violationf(RuleField, "invalid experiment result %q", e.Result)
	}
	if !e.NextSteps.IsValid() {
		return violationf(RuleField, "invalid experiment next_steps %q", e.NextSteps)
	}
	return nil
}

// NormalizeTags trims labels, drops blanks and duplicates, and keeps the first-seen order
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
