package announce

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
)

func TestComposeFeature(t *testing.T) {
	at := time.Date(2024, 2, 14, 16, 30, 0, 0, time.UTC)
	c := NewComposer("", core.FixedClock(at))

	a := c.Compose(&initiative.Initiative{
		ID:               "i-1",
		Title:            "Dark mode",
		ProblemStatement: "Users asked for a dark theme.",
		ItemType:         initiative.ItemTypeFeature,
	})

	assert.Equal(t, "Dark mode", a.Title)
	assert.Equal(t, core.InitiativeID("i-1"), a.InitiativeID)
	assert.Equal(t, "Users asked for a dark theme.", a.Body)
	assert.Equal(t, DefaultCategory, a.Category)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), a.Date)
	assert.Contains(t, a.BodyHTML, "<p>Users asked for a dark theme.</p>")
}

func TestBodyForExperiment(t *testing.T) {
	body := Body(&initiative.Initiative{
		Title:            "Checkout copy",
		ProblemStatement: "Drop-off on step two.",
		ItemType:         initiative.ItemTypeExperiment,
		ExperimentData: &initiative.ExperimentData{
			Hypothesis:              "Shorter copy lifts conversion",
			MetricBase:              "3.1%",
			MetricTarget:            "3.5%",
			MetricResult:            "3.8%",
			StatisticalSignificance: "true",
			Result:                  initiative.ResultWon,
			NextSteps:               initiative.NextStepsScale,
		},
	})

	paragraphs := strings.Split(body, "\n\n")
	assert.Equal(t, []string{
		"Drop-off on step two.",
		"**Hypothesis:** Shorter copy lifts conversion",
		"**Result:** Won (statistically significant)",
		"**Metric:** 3.1% → 3.8% (target 3.5%)",
		"**Next steps:** Scale",
	}, paragraphs)

	html := RenderHTML(body)
	assert.Contains(t, html, "<strong>Hypothesis:</strong>")
}

func TestBodyForExperimentWithoutData(t *testing.T) {
	body := Body(&initiative.Initiative{Title: "x", ItemType: initiative.ItemTypeExperiment})
	assert.Equal(t, "**Result:** Pending", body)
}

func TestMetricDelta(t *testing.T) {
	assert.Equal(t, "", metricDelta(nil))
	assert.Equal(t, "target 5", metricDelta(&initiative.ExperimentData{MetricTarget: "5"}))
	assert.Equal(t, "4", metricDelta(&initiative.ExperimentData{MetricResult: "4"}))
	assert.Equal(t, "2", metricDelta(&initiative.ExperimentData{MetricBase: "2"}))
}

func TestRenderHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", RenderHTML(""))
}
