// Package announce assembles the announcement emitted when an initiative is finalized.
package announce

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/ports"
)

// DefaultCategory is used when no category is configured
const DefaultCategory = "product"

// Composer builds announcement records from finalized initiatives
type Composer struct {
	category string
	clock    core.Clock
}

// NewComposer creates a composer for the given category
func NewComposer(category string, clock core.Clock) *Composer {
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Composer{category: category, clock: clock}
}

// Compose returns the announcement for it, dated today
func (c *Composer) Compose(it *initiative.Initiative) ports.Announcement {
	body := Body(it)
	now := c.clock.Now()
	return ports.Announcement{
		InitiativeID: it.ID,
		Title:        it.Title,
		Body:         body,
		BodyHTML:     RenderHTML(body),
		Date:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Category:     c.category,
	}
}

// Body joins the description and, for experiments, a structured result summary
// as markdown paragraphs.
func Body(it *initiative.Initiative) string {
	var paragraphs []string
	if desc := strings.TrimSpace(it.ProblemStatement); desc != "" {
		paragraphs = append(paragraphs, desc)
	}
	if it.ItemType == initiative.ItemTypeExperiment {
		paragraphs = append(paragraphs, experimentSummary(it.ExperimentData)...)
	}
	return strings.Join(paragraphs, "\n\n")
}

func experimentSummary(e *initiative.ExperimentData) []string {
	var out []string
	if e != nil && strings.TrimSpace(e.Hypothesis) != "" {
		out = append(out, fmt.Sprintf("**Hypothesis:** %s", strings.TrimSpace(e.Hypothesis)))
	}

	result := fmt.Sprintf("**Result:** %s", resultLabel(e.Outcome()))
	if e.IsSignificant() {
		result += " (statistically significant)"
	}
	out = append(out, result)

	if delta := metricDelta(e); delta != "" {
		out = append(out, fmt.Sprintf("**Metric:** %s", delta))
	}
	if e != nil && e.NextSteps != "" {
		out = append(out, fmt.Sprintf("**Next steps:** %s", nextStepsLabel(e.NextSteps)))
	}
	return out
}

func metricDelta(e *initiative.ExperimentData) string {
	if e == nil {
		return ""
	}
	base := strings.TrimSpace(e.MetricBase)
	result := strings.TrimSpace(e.MetricResult)
	target := strings.TrimSpace(e.MetricTarget)

	var delta string
	switch {
	case base != "" && result != "":
		delta = base + " → " + result
	case result != "":
		delta = result
	case base != "":
		delta = base
	}
	if target != "" {
		if delta == "" {
			return "target " + target
		}
		delta += " (target " + target + ")"
	}
	return delta
}

func resultLabel(r initiative.ExperimentResult) string {
	switch r {
	case initiative.ResultWon:
		return "Won"
	case initiative.ResultLost:
		return "Lost"
	case initiative.ResultInconclusive:
		return "Inconclusive"
	}
	return "Pending"
}

func nextStepsLabel(n initiative.NextSteps) string {
	switch n {
	case initiative.NextStepsScale:
		return "Scale"
	case initiative.NextStepsIterate:
		return "Iterate"
	case initiative.NextStepsDiscard:
		return "Discard"
	}
	return "None"
}

// RenderHTML converts a markdown body to HTML for stores that keep rendered text
func RenderHTML(body string) string {
	if body == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(body), p, renderer))
}
