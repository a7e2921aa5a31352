package initiative

import (
	"strings"
)

// PeriodType describes which ends of a scheduling window are set
type PeriodType string

const (
	PeriodNone     PeriodType = ""
	PeriodRange    PeriodType = "range"
	PeriodStart    PeriodType = "start"
	PeriodDeadline PeriodType = "deadline"
)

// PeriodSeparator joins the two ends of a window in its text encoding
const PeriodSeparator = "→"

// Period is the decoded scheduling window. Dates are kept as text and are not
// checked against a calendar.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// HasStart reports whether the window names a start date. Blank text does not count.
func (p Period) HasStart() bool { return strings.TrimSpace(p.Start) != "" }

// HasEnd reports whether the window names an end or target date
func (p Period) HasEnd() bool { return strings.TrimSpace(p.End) != "" }

// IsEmpty reports whether neither end is set
func (p Period) IsEmpty() bool { return !p.HasStart() && !p.HasEnd() }

// BuildPeriod encodes a window as (period_type, period_value).
//
//	start and end  -> range,    "2024-02-01 → 2024-02-14"
//	start only     -> start,    "2024-02-01"
//	end only       -> deadline, "→ 2024-02-14"
func BuildPeriod(p Period) (PeriodType, string) {
	start := strings.TrimSpace(p.Start)
	end := strings.TrimSpace(p.End)
	switch {
	case start != "" && end != "":
		return PeriodRange, start + " " + PeriodSeparator + " " + end
	case start != "":
		return PeriodStart, start
	case end != "":
		return PeriodDeadline, PeriodSeparator + " " + end
	}
	return PeriodNone, ""
}

// ParsePeriod decodes a stored window. Unknown types fall back to reading the
// value's shape so rows written by older clients still parse.
func ParsePeriod(ptype PeriodType, value string) Period {
	value = strings.TrimSpace(value)
	if value == "" {
		return Period{}
	}

	switch ptype {
	case PeriodStart:
		return Period{Start: value}
	case PeriodDeadline:
		return Period{End: strings.TrimSpace(strings.TrimPrefix(value, PeriodSeparator))}
	}

	if idx := strings.Index(value, PeriodSeparator); idx >= 0 {
		return Period{
			Start: strings.TrimSpace(value[:idx]),
			End:   strings.TrimSpace(value[idx+len(PeriodSeparator):]),
		}
	}
	return Period{Start: value}
}

// Period returns the decoded scheduling window of i
func (i *Initiative) Period() Period {
	return ParsePeriod(i.PeriodType, i.PeriodValue)
}
