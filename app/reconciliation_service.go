package app

import (
	"context"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/internal/telemetry"
	"prodflow/ports"
)

// DefaultSweepConcurrency bounds the number of repair writes in flight
const DefaultSweepConcurrency = 4

// ReconciliationService restores delivery items the board cannot show.
// Each repair is an independent single-field write; one failure does not stop the others.
type ReconciliationService struct {
	repo        ports.InitiativeRepository
	concurrency int64
	metrics     *telemetry.Instruments
}

// SweepFailure records a repair that could not be written
type SweepFailure struct {
	ID  core.InitiativeID `json:"id"`
	Err error             `json:"-"`
	Msg string            `json:"error"`
}

// SweepReport summarises one sweep pass
type SweepReport struct {
	Scanned  int                 `json:"scanned"`
	Repaired []core.InitiativeID `json:"repaired"`
	Failures []SweepFailure      `json:"failures,omitempty"`
}

// NewReconciliationService creates a sweep runner. concurrency <= 0 uses the default.
func NewReconciliationService(repo ports.InitiativeRepository, concurrency int, metrics *telemetry.Instruments) *ReconciliationService {
	if concurrency <= 0 {
		concurrency = DefaultSweepConcurrency
	}
	return &ReconciliationService{repo: repo, concurrency: int64(concurrency), metrics: metrics}
}

// Sweep loads the delivery lane and repairs every paused item in it
func (s *ReconciliationService) Sweep(ctx context.Context) (*SweepReport, error) {
	items, err := s.repo.List(ctx, initiative.Filter{Phase: initiative.PhaseDelivery})
	if err != nil {
		return nil, storeError("sweep", err)
	}
	return s.Repair(ctx, items), nil
}

// Repair writes status=design for every item in items that needs it
func (s *ReconciliationService) Repair(ctx context.Context, items []*initiative.Initiative) *SweepReport {
	report := &SweepReport{Scanned: len(items), Repaired: []core.InitiativeID{}}
	sem := semaphore.NewWeighted(s.concurrency)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(id core.InitiativeID, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failures = append(report.Failures, SweepFailure{ID: id, Err: err, Msg: err.Error()})
			return
		}
		report.Repaired = append(report.Repaired, id)
	}

	for _, it := range items {
		if !initiative.NeedsRepair(it) {
			continue
		}
		id := it.ID
		if err := sem.Acquire(ctx, 1); err != nil {
			record(id, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			repaired, err := s.repairOne(ctx, id)
			if err != nil {
				log.Printf("[ReconciliationService.Repair] ERROR: could not restore %s to design: %v", id, err)
				record(id, storeError("sweep repair", err))
				return
			}
			if repaired {
				record(id, nil)
			}
		}()
	}
	wg.Wait()

	sort.Slice(report.Repaired, func(a, b int) bool { return report.Repaired[a] < report.Repaired[b] })
	sort.Slice(report.Failures, func(a, b int) bool { return report.Failures[a].ID < report.Failures[b].ID })

	if len(report.Repaired) > 0 || len(report.Failures) > 0 {
		log.Printf("[ReconciliationService.Repair] scanned=%d repaired=%d failed=%d",
			report.Scanned, len(report.Repaired), len(report.Failures))
	}
	s.metrics.Sweep(ctx, len(report.Repaired), len(report.Failures))
	return report
}

// repairOne re-reads id and writes the repair only if the current record still
// needs it. Items moved or edited since the lane was loaded are left alone.
func (s *ReconciliationService) repairOne(ctx context.Context, id core.InitiativeID) (bool, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		if core.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	if !initiative.NeedsRepair(cur) {
		return false, nil
	}
	if _, err := s.repo.Update(ctx, id, initiative.RepairPatch()); err != nil {
		return false, err
	}
	return true, nil
}
