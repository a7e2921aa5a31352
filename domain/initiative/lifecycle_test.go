package initiative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodflow/domain/core"
)

func backlogItem() *Initiative {
	return &Initiative{
		ID:       "i-1",
		Title:    "Dark mode",
		ItemType: ItemTypeFeature,
		Phase:    PhaseBacklog,
		Status:   StatusPending,
		RICE:     RICE{Reach: 8, Impact: 7, Confidence: 6, Effort: 4},
	}
}

func activeItem(phase Phase, status Status) *Initiative {
	it := backlogItem()
	it.Phase = phase
	it.Status = status
	it.OwnerID = "U1"
	it.PeriodType, it.PeriodValue = BuildPeriod(Period{Start: "2024-02-01", End: "2024-02-14"})
	return it
}

func TestPlanPromoteRequiresOwner(t *testing.T) {
	for _, dest := range []Phase{PhaseDiscovery, PhaseDelivery} {
		cur := backlogItem()
		_, err := PlanPromote(cur, dest, Period{Start: "2024-02-01", End: "2024-02-14"})
		require.Error(t, err)
		assert.True(t, HasRule(err, RuleOwnerRequired))
		assert.Equal(t, PhaseBacklog, cur.Phase)
		assert.Equal(t, StatusPending, cur.Status)
	}
}

func TestPlanPromoteWindowRules(t *testing.T) {
	tests := []struct {
		name    string
		dest    Phase
		window  Period
		wantErr bool
	}{
		{"discovery with start", PhaseDiscovery, Period{Start: "2024-02-01"}, false},
		{"discovery without start", PhaseDiscovery, Period{End: "2024-02-14"}, true},
		{"delivery with end", PhaseDelivery, Period{End: "2024-02-14"}, false},
		{"delivery without end", PhaseDelivery, Period{Start: "2024-02-01"}, true},
		{"delivery with range", PhaseDelivery, Period{Start: "2024-02-01", End: "2024-02-14"}, false},
		{"no window at all", PhaseDiscovery, Period{}, true},
		{"discovery with blank start", PhaseDiscovery, Period{Start: "   "}, true},
		{"discovery with blank start and real end", PhaseDiscovery, Period{Start: " \t", End: "2024-02-14"}, true},
		{"delivery with blank end", PhaseDelivery, Period{Start: "2024-02-01", End: " \t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := backlogItem()
			cur.OwnerID = "U1"
			patch, err := PlanPromote(cur, tt.dest, tt.window)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, HasRule(err, RuleWindowRequired))
				return
			}
			require.NoError(t, err)
			next := patch.Apply(cur)
			assert.Equal(t, tt.dest, next.Phase)
			assert.Equal(t, StatusDesign, next.Status)
			assert.Equal(t, tt.window, next.Period())
		})
	}
}

func TestPlanPromoteUsesStoredWindow(t *testing.T) {
	cur := backlogItem()
	cur.OwnerID = "U1"
	cur.PeriodType, cur.PeriodValue = BuildPeriod(Period{End: "2024-05-01"})

	patch, err := PlanPromote(cur, PhaseDelivery, Period{})
	require.NoError(t, err)
	assert.Equal(t, "→ 2024-05-01", *patch.PeriodValue)
}

func TestPlanPromoteRejectsBadSourceAndDestination(t *testing.T) {
	cur := backlogItem()
	cur.OwnerID = "U1"
	_, err := PlanPromote(cur, PhaseFinalized, Period{Start: "x", End: "y"})
	assert.True(t, HasRule(err, RuleDestination))

	_, err = PlanPromote(cur, PhaseBacklog, Period{Start: "x", End: "y"})
	assert.True(t, HasRule(err, RuleDestination))

	active := activeItem(PhaseDiscovery, StatusRunning)
	_, err = PlanPromote(active, PhaseDelivery, Period{End: "y"})
	assert.True(t, HasRule(err, RuleSourcePhase))
}

func TestTransitionTableIsAnyToAny(t *testing.T) {
	for _, from := range workingStatuses {
		for _, to := range workingStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s should be allowed", from, to)
		}
	}
	assert.False(t, CanTransition(StatusPending, StatusDesign))
	assert.False(t, CanTransition(StatusDesign, StatusPending))
}

func TestPlanTransitionWithinActivePhases(t *testing.T) {
	for _, phase := range []Phase{PhaseDiscovery, PhaseDelivery} {
		for _, from := range workingStatuses {
			for _, to := range workingStatuses {
				cur := activeItem(phase, from)
				patch, err := PlanTransition(cur, to)
				require.NoError(t, err)
				if from == to {
					assert.True(t, patch.IsEmpty())
					continue
				}
				next := patch.Apply(cur)
				assert.Equal(t, to, next.Status)
				assert.Equal(t, phase, next.Phase)
			}
		}
	}
}

func TestPlanTransitionRejectsOutOfVocabulary(t *testing.T) {
	cur := activeItem(PhaseDelivery, StatusDesign)
	_, err := PlanTransition(cur, StatusPending)
	assert.True(t, HasRule(err, RuleVocabulary))

	_, err = PlanTransition(cur, Status("shipped"))
	assert.True(t, HasRule(err, RuleVocabulary))

	_, err = PlanTransition(backlogItem(), StatusRunning)
	assert.True(t, HasRule(err, RuleSourcePhase))
}

func TestPlanReturnToBacklog(t *testing.T) {
	cur := activeItem(PhaseDelivery, StatusRunning)
	patch, err := PlanReturnToBacklog(cur)
	require.NoError(t, err)

	next := patch.Apply(cur)
	assert.Equal(t, PhaseBacklog, next.Phase)
	assert.Equal(t, StatusPending, next.Status)
	assert.Equal(t, PeriodNone, next.PeriodType)
	assert.Empty(t, next.PeriodValue)
	assert.Equal(t, core.MemberID("U1"), next.OwnerID)

	_, err = PlanReturnToBacklog(backlogItem())
	assert.True(t, HasRule(err, RuleSourcePhase))
}

func TestPlanFinalize(t *testing.T) {
	cur := activeItem(PhaseDelivery, StatusCompleted)
	patch, err := PlanFinalize(cur)
	require.NoError(t, err)
	next := patch.Apply(cur)
	assert.Equal(t, PhaseFinalized, next.Phase)
	assert.Equal(t, StatusCompleted, next.Status)
	assert.NoError(t, Validate(next))

	for _, status := range []Status{StatusDesign, StatusRunning, StatusPaused} {
		_, err := PlanFinalize(activeItem(PhaseDiscovery, status))
		assert.True(t, HasRule(err, RuleSourceStatus), "status %s", status)
	}

	_, err = PlanFinalize(backlogItem())
	assert.True(t, HasRule(err, RuleSourcePhase))
}

func TestFinalizedIsTerminal(t *testing.T) {
	cur := activeItem(PhaseFinalized, StatusCompleted)
	before := cur.Clone()

	_, err := PlanPromote(cur, PhaseDelivery, Period{End: "2024-09-01"})
	assert.True(t, HasRule(err, RuleTerminal))
	for _, to := range workingStatuses {
		_, err = PlanTransition(cur, to)
		assert.True(t, HasRule(err, RuleTerminal))
	}
	_, err = PlanReturnToBacklog(cur)
	assert.True(t, HasRule(err, RuleTerminal))
	_, err = PlanFinalize(cur)
	assert.True(t, HasRule(err, RuleTerminal))
	title := "renamed"
	_, err = PlanEdit(cur, Edit{Title: &title})
	assert.True(t, HasRule(err, RuleTerminal))

	assert.Equal(t, before, cur)
}

func TestPlanEdit(t *testing.T) {
	cur := activeItem(PhaseDiscovery, StatusRunning)
	title := "  Dark mode v2 "
	tags := []string{"ux", " ux", "", "web"}
	patch, err := PlanEdit(cur, Edit{Title: &title, Tags: &tags})
	require.NoError(t, err)
	assert.False(t, patch.TouchesLifecycle())

	next := patch.Apply(cur)
	assert.Equal(t, "Dark mode v2", next.Title)
	assert.Equal(t, []string{"ux", "web"}, next.Tags)
	assert.Equal(t, "ux", next.PrimaryTag())
}

func TestPlanEditRejectsInvalidFields(t *testing.T) {
	cur := activeItem(PhaseDelivery, StatusDesign)

	blank := "   "
	_, err := PlanEdit(cur, Edit{Title: &blank})
	assert.True(t, HasRule(err, RuleField))

	_, err = PlanEdit(cur, Edit{RICE: &RICE{Reach: 11, Impact: 1, Confidence: 1, Effort: 1}})
	assert.True(t, HasRule(err, RuleField))

	noOwner := core.MemberID("")
	_, err = PlanEdit(cur, Edit{OwnerID: &noOwner})
	assert.True(t, HasRule(err, RuleOwnerRequired))

	_, err = PlanEdit(cur, Edit{ExperimentData: &ExperimentData{Result: "maybe"}})
	assert.True(t, HasRule(err, RuleField))
}

func TestNewFromDraft(t *testing.T) {
	it, err := NewFromDraft(Draft{Title: " Dark mode ", ItemType: ItemTypeFeature,
		RICE: &RICE{Reach: 8, Impact: 7, Confidence: 6, Effort: 4}})
	require.NoError(t, err)
	assert.Equal(t, "Dark mode", it.Title)
	assert.Equal(t, PhaseBacklog, it.Phase)
	assert.Equal(t, StatusPending, it.Status)
	assert.InDelta(t, 84.0, it.RICE.Score(), 1e-9)

	exp, err := NewFromDraft(Draft{Title: "Checkout copy", ItemType: ItemTypeExperiment})
	require.NoError(t, err)
	require.NotNil(t, exp.ExperimentData)
	assert.Equal(t, ResultPending, exp.ExperimentData.Outcome())
	assert.Equal(t, DefaultRICE, exp.RICE)
}

func TestNewFromDraftInContext(t *testing.T) {
	it, err := NewFromDraft(Draft{Title: "Onboarding", ItemType: ItemTypeFeature, Phase: PhaseDelivery,
		OwnerID: "U1", Period: Period{End: "2024-03-01"}})
	require.NoError(t, err)
	assert.Equal(t, PhaseDelivery, it.Phase)
	assert.Equal(t, StatusDesign, it.Status)

	_, err = NewFromDraft(Draft{Title: "Onboarding", ItemType: ItemTypeFeature, Phase: PhaseDelivery,
		Period: Period{End: "2024-03-01"}})
	assert.True(t, HasRule(err, RuleOwnerRequired))

	_, err = NewFromDraft(Draft{Title: "Onboarding", ItemType: ItemTypeFeature, Phase: PhaseFinalized})
	assert.True(t, HasRule(err, RuleDestination))

	for _, window := range []Period{{End: " \t"}, {Start: "2024-03-01", End: "  "}} {
		_, err = NewFromDraft(Draft{Title: "Onboarding", ItemType: ItemTypeFeature, Phase: PhaseDelivery,
			OwnerID: "U1", Period: window})
		assert.True(t, HasRule(err, RuleWindowRequired), "window %+v", window)
	}
	_, err = NewFromDraft(Draft{Title: "Onboarding", ItemType: ItemTypeExperiment, Phase: PhaseDiscovery,
		OwnerID: "U1", Period: Period{Start: "   "}})
	assert.True(t, HasRule(err, RuleWindowRequired))
}

func TestNewFromDraftRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
	}{
		{"empty title", Draft{Title: "  ", ItemType: ItemTypeBug}},
		{"unknown type", Draft{Title: "x", ItemType: "epic"}},
		{"rice out of range", Draft{Title: "x", ItemType: ItemTypeBug, RICE: &RICE{Reach: 0, Impact: 1, Confidence: 1, Effort: 1}}},
		{"bad next steps", Draft{Title: "x", ItemType: ItemTypeExperiment, ExperimentData: &ExperimentData{NextSteps: "ship"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromDraft(tt.draft)
			require.Error(t, err)
			_, ok := AsViolation(err)
			assert.True(t, ok)
		})
	}
}
