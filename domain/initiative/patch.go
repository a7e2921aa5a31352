package initiative

import (
	"prodflow/domain/core"
)

// Patch is a partial update. Nil fields are left untouched. ParentID is
// deliberately absent: only escalation sets it, and only at creation.
type Patch struct {
	Title            *string         `json:"title,omitempty"`
	ProblemStatement *string         `json:"problem_statement,omitempty"`
	Phase            *Phase          `json:"phase,omitempty"`
	Status           *Status         `json:"status,omitempty"`
	RICE             *RICE           `json:"rice,omitempty"`
	OwnerID          *core.MemberID  `json:"owner_id,omitempty"`
	ProjectID        *core.ProjectID `json:"project_id,omitempty"`
	PeriodType       *PeriodType     `json:"period_type,omitempty"`
	PeriodValue      *string         `json:"period_value,omitempty"`
	ExperimentData   *ExperimentData `json:"experiment_data,omitempty"`
	Tags             *[]string       `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.ProblemStatement == nil && p.Phase == nil &&
		p.Status == nil && p.RICE == nil && p.OwnerID == nil && p.ProjectID == nil &&
		p.PeriodType == nil && p.PeriodValue == nil && p.ExperimentData == nil && p.Tags == nil
}

// TouchesLifecycle reports whether the patch writes phase or status
func (p Patch) TouchesLifecycle() bool {
	return p.Phase != nil || p.Status != nil
}

// Apply returns a copy of i with the patch applied. i is not modified.
func (p Patch) Apply(i *Initiative) *Initiative {
	next := i.Clone()
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.ProblemStatement != nil {
		next.ProblemStatement = *p.ProblemStatement
	}
	if p.Phase != nil {
		next.Phase = *p.Phase
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.RICE != nil {
		next.RICE = *p.RICE
	}
	if p.OwnerID != nil {
		next.OwnerID = *p.OwnerID
	}
	if p.ProjectID != nil {
		next.ProjectID = *p.ProjectID
	}
	if p.PeriodType != nil {
		next.PeriodType = *p.PeriodType
	}
	if p.PeriodValue != nil {
		next.PeriodValue = *p.PeriodValue
	}
	if p.ExperimentData != nil {
		ed := *p.ExperimentData
		next.ExperimentData = &ed
	}
	if p.Tags != nil {
		next.Tags = append([]string(nil), (*p.Tags)...)
	}
	return next
}

func (p *Patch) setPeriod(period Period) {
	ptype, value := BuildPeriod(period)
	p.PeriodType = &ptype
	p.PeriodValue = &value
}

func (p *Patch) clearPeriod() {
	p.setPeriod(Period{})
}

func phasePtr(v Phase) *Phase    { return &v }
func statusPtr(v Status) *Status { return &v }
