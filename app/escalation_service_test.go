package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	apperrors "prodflow/internal/errors"
)

func TestExperimentWinEscalates(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	exp := wonExperiment("exp-10")
	h.repo.Seed(exp)

	feature, err := h.escalator.Escalate(ctx, exp.ID)
	require.NoError(t, err)
	assert.False(t, feature.ID.IsEmpty())
	assert.Equal(t, initiative.ItemTypeFeature, feature.ItemType)
	assert.Equal(t, initiative.PhaseDelivery, feature.Phase)
	assert.Equal(t, initiative.StatusDesign, feature.Status)
	assert.Equal(t, exp.ID, feature.ParentID)
	assert.Equal(t, exp.Title, feature.Title)
	assert.Equal(t, exp.ProblemStatement, feature.ProblemStatement)
	assert.Equal(t, exp.RICE, feature.RICE)
	assert.Equal(t, exp.OwnerID, feature.OwnerID)
	assert.Equal(t, exp.ProjectID, feature.ProjectID)
	assert.Equal(t, exp.PeriodValue, feature.PeriodValue)
	assert.Equal(t, exp.Tags, feature.Tags)
	assert.Nil(t, feature.ExperimentData)

	stillExp, err := h.lifecycle.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, initiative.PhaseDiscovery, stillExp.Phase)

	_, err = h.escalator.Escalate(ctx, exp.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateEscalation(err))

	children, err := h.escalator.Children(ctx, exp.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestEscalateRejectsIneligible(t *testing.T) {
	ctx := context.Background()

	cases := map[string]func(*initiative.Initiative){
		"lost result":     func(i *initiative.Initiative) { i.ExperimentData.Result = initiative.ResultLost },
		"pending result":  func(i *initiative.Initiative) { i.ExperimentData = nil },
		"still running":   func(i *initiative.Initiative) { i.Status = initiative.StatusRunning },
		"not experiment":  func(i *initiative.Initiative) { i.ItemType = initiative.ItemTypeFeature },
		"already shipped": func(i *initiative.Initiative) { i.Phase = initiative.PhaseFinalized },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			exp := wonExperiment("exp-11")
			mutate(exp)
			h.repo.Seed(exp)

			_, err := h.escalator.Escalate(ctx, exp.ID)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.True(t, initiative.HasRule(err, initiative.RuleNotEscalatable))
			assert.Equal(t, 1, h.repo.Len())
		})
	}
}

func TestEscalateMissing(t *testing.T) {
	h := newHarness()
	_, err := h.escalator.Escalate(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConcurrentEscalationCreatesOneChild(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	exp := wonExperiment("exp-12")
	h.repo.Seed(exp)

	const attempts = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    []core.InitiativeID
		duplicates int
	)
	for n := 0; n < attempts; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feature, err := h.escalator.Escalate(ctx, exp.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if apperrors.IsDuplicateEscalation(err) {
					duplicates++
				}
				return
			}
			created = append(created, feature.ID)
		}()
	}
	wg.Wait()

	assert.Len(t, created, 1)
	assert.Equal(t, attempts-1, duplicates)

	children, err := h.escalator.Children(ctx, exp.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestLostExperimentEscalatesAfterResultEdit(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	exp := wonExperiment("exp-13")
	exp.ExperimentData.Result = initiative.ResultLost
	h.repo.Seed(exp)

	_, err := h.escalator.Escalate(ctx, exp.ID)
	require.Error(t, err)
	assert.True(t, initiative.HasRule(err, initiative.RuleNotEscalatable))
	assert.Equal(t, 1, h.repo.Len())

	won := *exp.ExperimentData
	won.Result = initiative.ResultWon
	edited, err := h.lifecycle.UpdateFields(ctx, exp.ID, initiative.Edit{ExperimentData: &won})
	require.NoError(t, err)
	assert.Equal(t, initiative.ResultWon, edited.ExperimentData.Result)

	feature, err := h.escalator.Escalate(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp.ID, feature.ParentID)
	assert.Equal(t, initiative.PhaseDelivery, feature.Phase)

	_, err = h.escalator.Escalate(ctx, exp.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateEscalation(err))

	children, err := h.escalator.Children(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, feature.ID, children[0].ID)
}

func TestReturnedFeatureCannotReenterDeliveryBesideNewOne(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	exp := wonExperiment("exp-14")
	h.repo.Seed(exp)

	first, err := h.escalator.Escalate(ctx, exp.ID)
	require.NoError(t, err)
	_, err = h.lifecycle.ReturnToBacklog(ctx, first.ID)
	require.NoError(t, err)

	second, err := h.escalator.Escalate(ctx, exp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = h.lifecycle.Promote(ctx, first.ID, initiative.PhaseDelivery, initiative.Period{End: "2024-05-01"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, apperrors.IsDuplicateEscalation(err))
	assert.True(t, initiative.HasRule(err, initiative.RuleDeliveryChild))

	stored, err := h.lifecycle.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, initiative.PhaseBacklog, stored.Phase)

	_, err = h.lifecycle.Promote(ctx, first.ID, initiative.PhaseDiscovery, initiative.Period{Start: "2024-05-01"})
	require.NoError(t, err)
}
