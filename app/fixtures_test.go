package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"prodflow/adapters/memory"
	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/internal/announce"
	"prodflow/ports"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

type harness struct {
	repo      *memory.InitiativeRepository
	roster    *memory.Roster
	log       *memory.AnnouncementLog
	sweeper   *ReconciliationService
	lifecycle *LifecycleService
	escalator *EscalationService
}

func newHarness() *harness {
	clock := core.FixedClock(testNow)
	repo := memory.NewInitiativeRepository(clock)
	roster := memory.NewRoster(
		ports.Member{ID: "alice", DisplayName: "Alice"},
		ports.Member{ID: "bob", DisplayName: "Bob"},
	)
	log := memory.NewAnnouncementLog()
	sweeper := NewReconciliationService(repo, 2, nil)

	return &harness{
		repo:    repo,
		roster:  roster,
		log:     log,
		sweeper: sweeper,
		lifecycle: NewLifecycleService(LifecycleDeps{
			Repo:      repo,
			Owners:    NewRosterOwnerValidator(roster, true),
			Publisher: log,
			Composer:  announce.NewComposer("product", clock),
			Sweeper:   sweeper,
		}),
		escalator: NewEscalationService(repo, nil),
	}
}

func wonExperiment(id core.InitiativeID) *initiative.Initiative {
	return &initiative.Initiative{
		ID:               id,
		Title:            "Onboarding checklist",
		ProblemStatement: "New users drop off before their first project.",
		ItemType:         initiative.ItemTypeExperiment,
		Phase:            initiative.PhaseDiscovery,
		Status:           initiative.StatusCompleted,
		RICE:             initiative.RICE{Reach: 8, Impact: 6, Confidence: 7, Effort: 3},
		OwnerID:          "alice",
		ProjectID:        "growth",
		PeriodType:       initiative.PeriodRange,
		PeriodValue:      "2024-02-01 → 2024-02-14",
		Tags:             []string{"activation", "q1"},
		ExperimentData: &initiative.ExperimentData{
			Hypothesis:              "A checklist raises activation",
			MetricBase:              "31%",
			MetricTarget:            "35%",
			MetricResult:            "37%",
			StatisticalSignificance: "true",
			Result:                  initiative.ResultWon,
			NextSteps:               initiative.NextStepsScale,
		},
	}
}

func pausedDelivery(id core.InitiativeID) *initiative.Initiative {
	return &initiative.Initiative{
		ID:          id,
		Title:       "Delivery " + string(id),
		ItemType:    initiative.ItemTypeFeature,
		Phase:       initiative.PhaseDelivery,
		Status:      initiative.StatusPaused,
		RICE:        initiative.DefaultRICE,
		OwnerID:     "bob",
		PeriodType:  initiative.PeriodDeadline,
		PeriodValue: "→ 2024-04-01",
	}
}

// MockPublisher is a testify mock of ports.AnnouncementPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, a ports.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockRoster is a testify mock of ports.MemberRoster
type MockRoster struct {
	mock.Mock
}

func (m *MockRoster) List(ctx context.Context) ([]ports.Member, error) {
	args := m.Called(ctx)
	members, _ := args.Get(0).([]ports.Member)
	return members, args.Error(1)
}

var errStoreDown = errors.New("connection reset by peer")

// flakyRepository fails Update for selected ids and counts calls
type flakyRepository struct {
	*memory.InitiativeRepository
	failUpdate map[core.InitiativeID]bool
	failList   bool

	mu      sync.Mutex
	updates int
}

func (f *flakyRepository) Update(ctx context.Context, id core.InitiativeID, patch initiative.Patch) (*initiative.Initiative, error) {
	f.mu.Lock()
	f.updates++
	f.mu.Unlock()
	if f.failUpdate[id] {
		return nil, errStoreDown
	}
	return f.InitiativeRepository.Update(ctx, id, patch)
}

func (f *flakyRepository) List(ctx context.Context, filter initiative.Filter) ([]*initiative.Initiative, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.InitiativeRepository.List(ctx, filter)
}

func (f *flakyRepository) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}
