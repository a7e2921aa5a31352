package initiative

import (
	"fmt"
	"sort"
	"strings"
)

// RICE input bounds
const (
	RICEMin = 1
	RICEMax = 10
)

// Score returns (reach × impact × confidence) / max(effort, 1).
// Range checks belong to the caller; an effort below one is scored as one.
func Score(reach, impact, confidence, effort int) float64 {
	if effort < 1 {
		effort = 1
	}
	return float64(reach*impact*confidence) / float64(effort)
}

// ValidateRICE rejects inputs outside [1,10]
func ValidateRICE(r RICE) error {
	fields := []struct {
		name  string
		value int
	}{
		{"rice_reach", r.Reach},
		{"rice_impact", r.Impact},
		{"rice_confidence", r.Confidence},
		{"rice_effort", r.Effort},
	}
	for _, f := range fields {
		if f.value < RICEMin || f.value > RICEMax {
			return fmt.Errorf("%s must be between %d and %d, got %d", f.name, RICEMin, RICEMax, f.value)
		}
	}
	return nil
}

// Ranked pairs an initiative with its score and 1-based rank
type Ranked struct {
	Initiative *Initiative `json:"initiative"`
	Score      float64     `json:"score"`
	Rank       int         `json:"rank"`
}

// RankBacklog orders initiatives by RICE score, highest first. Ties fall back to
// title (case-insensitive) then id, so identical inputs always rank identically.
func RankBacklog(items []*Initiative) []Ranked {
	ranked := make([]Ranked, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ranked = append(ranked, Ranked{Initiative: it, Score: it.RICE.Score()})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		ta := strings.ToLower(ranked[a].Initiative.Title)
		tb := strings.ToLower(ranked[b].Initiative.Title)
		if ta != tb {
			return ta < tb
		}
		return ranked[a].Initiative.ID < ranked[b].Initiative.ID
	})

	for idx := range ranked {
		ranked[idx].Rank = idx + 1
	}
	return ranked
}
