package initiative

import (
	"strings"
	"time"

	"prodflow/domain/core"
)

// ItemType classifies the kind of product work an initiative represents
type ItemType string

const (
	ItemTypeExperiment ItemType = "experiment"
	ItemTypeFeature    ItemType = "feature"
	ItemTypeTechDebt   ItemType = "tech_debt"
	ItemTypeBug        ItemType = "bug"
)

// IsValid checks if the item type value is known
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeExperiment, ItemTypeFeature, ItemTypeTechDebt, ItemTypeBug:
		return true
	}
	return false
}

// Phase is the coarse lifecycle stage. It selects the status vocabulary and the board lane.
type Phase string

const (
	PhaseBacklog   Phase = "backlog"
	PhaseDiscovery Phase = "discovery"
	PhaseDelivery  Phase = "delivery"
	PhaseFinalized Phase = "finalized"
)

// IsValid checks if the phase value is known
func (p Phase) IsValid() bool {
	switch p {
	case PhaseBacklog, PhaseDiscovery, PhaseDelivery, PhaseFinalized:
		return true
	}
	return false
}

// IsActive reports whether the phase is one of the two working tracks
func (p Phase) IsActive() bool {
	return p == PhaseDiscovery || p == PhaseDelivery
}

// Status is the fine-grained state within a phase
type Status string

const (
	StatusPending   Status = "pending"
	StatusDesign    Status = "design"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

// IsValid checks if the status value is known in any phase
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDesign, StatusRunning, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

// ExperimentResult is the recorded outcome of an experiment
type ExperimentResult string

const (
	ResultPending      ExperimentResult = "pending"
	ResultWon          ExperimentResult = "won"
	ResultLost         ExperimentResult = "lost"
	ResultInconclusive ExperimentResult = "inconclusive"
)

// IsValid checks if the result value is known. The empty value is accepted and means pending.
func (r ExperimentResult) IsValid() bool {
	switch r {
	case "", ResultPending, ResultWon, ResultLost, ResultInconclusive:
		return true
	}
	return false
}

// Normalize maps the empty result to pending
func (r ExperimentResult) Normalize() ExperimentResult {
	if r == "" {
		return ResultPending
	}
	return r
}

// NextSteps is the follow-up decided after an experiment
type NextSteps string

const (
	NextStepsNone    NextSteps = "none"
	NextStepsDiscard NextSteps = "discard"
	NextStepsScale   NextSteps = "scale"
	NextStepsIterate NextSteps = "iterate"
)

// IsValid checks if the next-steps value is known. Empty means not yet decided.
func (n NextSteps) IsValid() bool {
	switch n {
	case "", NextStepsNone, NextStepsDiscard, NextStepsScale, NextStepsIterate:
		return true
	}
	return false
}

// ExperimentData is the structured sub-record carried by experiments
type ExperimentData struct {
	Hypothesis              string           `json:"hypothesis,omitempty"`
	FunnelStage             string           `json:"funnel_stage,omitempty"`
	DashboardLink           string           `json:"dashboard_link,omitempty"`
	MetricBase              string           `json:"metric_base,omitempty"`
	MetricTarget            string           `json:"metric_target,omitempty"`
	MetricResult            string           `json:"metric_result,omitempty"`
	StatisticalSignificance string           `json:"statistical_significance,omitempty"`
	Result                  ExperimentResult `json:"result,omitempty"`
	NextSteps               NextSteps        `json:"next_steps,omitempty"`
}

// IsSignificant interprets the boolean-as-text significance flag
func (e *ExperimentData) IsSignificant() bool {
	if e == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(e.StatisticalSignificance)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// Outcome returns the experiment result, treating a missing record as pending
func (e *ExperimentData) Outcome() ExperimentResult {
	if e == nil {
		return ResultPending
	}
	return e.Result.Normalize()
}

// RICE holds the four prioritization inputs, each in [1,10]
type RICE struct {
	Reach      int `json:"rice_reach" db:"rice_reach"`
	Impact     int `json:"rice_impact" db:"rice_impact"`
	Confidence int `json:"rice_confidence" db:"rice_confidence"`
	Effort     int `json:"rice_effort" db:"rice_effort"`
}

// DefaultRICE is the neutral midpoint used when a caller supplies no inputs
var DefaultRICE = RICE{Reach: 5, Impact: 5, Confidence: 5, Effort: 5}

// Score computes the RICE score of r
func (r RICE) Score() float64 {
	return Score(r.Reach, r.Impact, r.Confidence, r.Effort)
}

// Initiative is the unit of product work tracked by the lifecycle engine
type Initiative struct {
	ID               core.InitiativeID `json:"id"`
	Title            string            `json:"title"`
	ProblemStatement string            `json:"problem_statement,omitempty"`
	ItemType         ItemType          `json:"item_type"`
	Phase            Phase             `json:"phase"`
	Status           Status            `json:"status"`
	RICE
	OwnerID        core.MemberID     `json:"owner_id,omitempty"`
	ProjectID      core.ProjectID    `json:"project_id,omitempty"`
	ParentID       core.InitiativeID `json:"parent_id,omitempty"`
	PeriodType     PeriodType        `json:"period_type,omitempty"`
	PeriodValue    string            `json:"period_value,omitempty"`
	ExperimentData *ExperimentData   `json:"experiment_data,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// IsFinalized reports whether the initiative reached the terminal phase
func (i *Initiative) IsFinalized() bool {
	return i.Phase == PhaseFinalized
}

// PrimaryTag returns the first tag, which boards treat as the significant one
func (i *Initiative) PrimaryTag() string {
	if len(i.Tags) == 0 {
		return ""
	}
	return i.Tags[0]
}

// Clone returns a deep copy so callers can compute a next state without aliasing
func (i *Initiative) Clone() *Initiative {
	if i == nil {
		return nil
	}
	c := *i
	if i.ExperimentData != nil {
		ed := *i.ExperimentData
		c.ExperimentData = &ed
	}
	if i.Tags != nil {
		c.Tags = append([]string(nil), i.Tags...)
	}
	return &c
}

// Filter selects initiatives from a store. Zero-valued fields match everything.
type Filter struct {
	IDs      []core.InitiativeID
	Phase    Phase
	Status   Status
	ItemType ItemType
	ParentID core.InitiativeID
	OwnerID  core.MemberID
	Limit    int
}

// Matches reports whether i satisfies the filter
func (f Filter) Matches(i *Initiative) bool {
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == i.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Phase != "" && i.Phase != f.Phase {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.ItemType != "" && i.ItemType != f.ItemType {
		return false
	}
	if f.ParentID != "" && i.ParentID != f.ParentID {
		return false
	}
	if f.OwnerID != "" && i.OwnerID != f.OwnerID {
		return false
	}
	return true
}
