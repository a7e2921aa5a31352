package initiative

import (
	"strings"

	"prodflow/domain/core"
)

// statusTransitions is the intra-phase table for discovery and delivery.
// Every pair is allowed: items may jump in either direction between any two
// working statuses. Only statuses outside the table are rejected.
var statusTransitions = map[Status]map[Status]bool{
	StatusDesign:    {StatusDesign: true, StatusRunning: true, StatusCompleted: true, StatusPaused: true},
	StatusRunning:   {StatusDesign: true, StatusRunning: true, StatusCompleted: true, StatusPaused: true},
	StatusCompleted: {StatusDesign: true, StatusRunning: true, StatusCompleted: true, StatusPaused: true},
	StatusPaused:    {StatusDesign: true, StatusRunning: true, StatusCompleted: true, StatusPaused: true},
}

// CanTransition reports whether an active item may move from one status to another
func CanTransition(from, to Status) bool {
	return statusTransitions[from][to]
}

func guardTerminal(cur *Initiative) error {
	if cur.IsFinalized() {
		return violationf(RuleTerminal, "initiative %s is finalized and can no longer change", cur.ID)
	}
	return nil
}

// checkPromotion holds the rules shared by Promote and in-context creation
func checkPromotion(cur *Initiative, dest Phase, window Period) error {
	if !dest.IsActive() {
		return violationf(RuleDestination, "promotion target must be discovery or delivery, got %q", dest)
	}
	if cur.OwnerID.IsEmpty() {
		return violationf(RuleOwnerRequired, "an owner is required before moving to %s", dest)
	}
	switch dest {
	case PhaseDiscovery:
		if !window.HasStart() {
			return violationf(RuleWindowRequired, "discovery requires a start date")
		}
	case PhaseDelivery:
		if !window.HasEnd() {
			return violationf(RuleWindowRequired, "delivery requires an end or target date")
		}
	}
	return nil
}

// PlanPromote computes the backlog -> discovery|delivery transition.
// window replaces the stored scheduling window when it is non-empty.
func PlanPromote(cur *Initiative, dest Phase, window Period) (Patch, error) {
	if err := guardTerminal(cur); err != nil {
		return Patch{}, err
	}
	if cur.Phase != PhaseBacklog {
		return Patch{}, violationf(RuleSourcePhase, "only backlog items can be promoted (current phase: %s)", cur.Phase)
	}
	if window.IsEmpty() {
		window = cur.Period()
	}
	if err := checkPromotion(cur, dest, window); err != nil {
		return Patch{}, err
	}

	p := Patch{Phase: phasePtr(dest), Status: statusPtr(StatusDesign)}
	p.setPeriod(window)
	return p, nil
}

// PlanTransition computes a status change within discovery or delivery.
// Moving to the current status yields an empty patch.
func PlanTransition(cur *Initiative, to Status) (Patch, error) {
	if err := guardTerminal(cur); err != nil {
		return Patch{}, err
	}
	if !cur.Phase.IsActive() {
		return Patch{}, violationf(RuleSourcePhase, "status changes need a discovery or delivery item (current phase: %s)", cur.Phase)
	}
	if !StatusAllowed(cur.Phase, to) {
		return Patch{}, violationf(RuleVocabulary, "status %q is not valid in phase %s", to, cur.Phase)
	}
	if !CanTransition(cur.Status, to) {
		return Patch{}, violationf(RuleSourceStatus, "cannot move from %s to %s", cur.Status, to)
	}
	if cur.Status == to {
		return Patch{}, nil
	}
	return Patch{Status: statusPtr(to)}, nil
}

// PlanReturnToBacklog undoes a promotion: back to backlog.pending with no window
func PlanReturnToBacklog(cur *Initiative) (Patch, error) {
	if err := guardTerminal(cur); err != nil {
		return Patch{}, err
	}
	if !cur.Phase.IsActive() {
		return Patch{}, violationf(RuleSourcePhase, "only discovery or delivery items can return to backlog (current phase: %s)", cur.Phase)
	}
	p := Patch{Phase: phasePtr(PhaseBacklog), Status: statusPtr(StatusPending)}
	p.clearPeriod()
	return p, nil
}

// PlanFinalize computes the one-way completed -> finalized transition
func PlanFinalize(cur *Initiative) (Patch, error) {
	if err := guardTerminal(cur); err != nil {
		return Patch{}, err
	}
	if !cur.Phase.IsActive() {
		return Patch{}, violationf(RuleSourcePhase, "only discovery or delivery items can be finalized (current phase: %s)", cur.Phase)
	}
	if cur.Status != StatusCompleted {
		return Patch{}, violationf(RuleSourceStatus, "finalize requires status completed (current status: %s)", cur.Status)
	}
	return Patch{Phase: phasePtr(PhaseFinalized)}, nil
}

// Edit is a free-form field edit. It never touches phase, status or parent.
type Edit struct {
	Title            *string         `json:"title,omitempty"`
	ProblemStatement *string         `json:"problem_statement,omitempty"`
	RICE             *RICE           `json:"rice,omitempty"`
	OwnerID          *core.MemberID  `json:"owner_id,omitempty"`
	ProjectID        *core.ProjectID `json:"project_id,omitempty"`
	Period           *Period         `json:"period,omitempty"`
	ExperimentData   *ExperimentData `json:"experiment_data,omitempty"`
	Tags             *[]string       `json:"tags,omitempty"`
}

// PlanEdit validates a field edit against cur and converts it into a patch
func PlanEdit(cur *Initiative, e Edit) (Patch, error) {
	if err := guardTerminal(cur); err != nil {
		return Patch{}, err
	}

	var p Patch
	if e.Title != nil {
		title := strings.TrimSpace(*e.Title)
		p.Title = &title
	}
	if e.ProblemStatement != nil {
		ps := *e.ProblemStatement
		p.ProblemStatement = &ps
	}
	if e.RICE != nil {
		r := *e.RICE
		p.RICE = &r
	}
	if e.OwnerID != nil {
		owner := core.MemberID(strings.TrimSpace(string(*e.OwnerID)))
		p.OwnerID = &owner
	}
	if e.ProjectID != nil {
		project := *e.ProjectID
		p.ProjectID = &project
	}
	if e.Period != nil {
		p.setPeriod(*e.Period)
	}
	if e.ExperimentData != nil {
		ed := *e.ExperimentData
		p.ExperimentData = &ed
	}
	if e.Tags != nil {
		tags := NormalizeTags(*e.Tags)
		p.Tags = &tags
	}

	if err := Validate(p.Apply(cur)); err != nil {
		return Patch{}, err
	}
	return p, nil
}
