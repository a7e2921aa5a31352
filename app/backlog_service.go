package app

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"prodflow/domain/initiative"
	"prodflow/ports"
)

// BacklogService ranks pending work by RICE score
type BacklogService struct {
	repo ports.InitiativeRepository
}

// NewBacklogService creates a backlog service
func NewBacklogService(repo ports.InitiativeRepository) *BacklogService {
	return &BacklogService{repo: repo}
}

// ScoreSummary describes the score distribution of the backlog
type ScoreSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// Rank returns the backlog ordered by score. limit <= 0 returns everything.
func (s *BacklogService) Rank(ctx context.Context, limit int) ([]initiative.Ranked, error) {
	items, err := s.repo.List(ctx, initiative.Filter{Phase: initiative.PhaseBacklog})
	if err != nil {
		return nil, storeError("rank backlog", err)
	}
	ranked := initiative.RankBacklog(items)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Summary computes distribution figures over the scores of the ranked backlog
func (s *BacklogService) Summary(ranked []initiative.Ranked) ScoreSummary {
	summary := ScoreSummary{Count: len(ranked)}
	if len(ranked) == 0 {
		return summary
	}

	scores := make([]float64, len(ranked))
	for idx, r := range ranked {
		scores[idx] = r.Score
	}

	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) < 2 || math.IsNaN(std) {
		std = 0
	}
	summary.Mean = mean
	summary.StdDev = std

	summary.Min, _ = stats.Min(scores)
	summary.Max, _ = stats.Max(scores)
	summary.Median, _ = stats.Median(scores)
	summary.P75 = percentile(scores, 75)
	summary.P90 = percentile(scores, 90)
	return summary
}

func percentile(data []float64, p float64) float64 {
	v, err := stats.Percentile(data, p)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}
