package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/domain/onboarding"
)

const dateLayout = "2006-01-02"

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	leadingIntRe = regexp.MustCompile(`^\s*"?\s*(-?\d+)`)
)

// flexInt decodes 30, "30" and "30 minutes" alike.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	m := leadingIntRe.FindSubmatch(b)
	if m == nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type wireSession struct {
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	Kind            string   `json:"kind"`
	Duration        flexInt  `json:"duration"`
	DurationMinutes flexInt  `json:"durationMinutes"`
	Topics          []string `json:"topics"`
	Description     string   `json:"description"`
}

type wireDay struct {
	Day       flexInt       `json:"day"`
	DayNumber flexInt       `json:"dayNumber"`
	Date      string        `json:"date"`
	Sessions  []wireSession `json:"sessions"`
}

type wirePlan struct {
	Title    string    `json:"title"`
	Overview string    `json:"overview"`
	Days     []wireDay `json:"days"`
	Tips     []string  `json:"tips"`
}

// ParseStudyPlan decodes and validates the first JSON object in raw. Dates
// and day numbers are rewritten sequentially from req.StartDate.
func (e *Extractor) ParseStudyPlan(raw string, req onboarding.PlanRequest) (onboarding.StudyPlan, error) {
	req = req.Normalize()
	block := jsonObjectRe.FindString(raw)
	if block == "" {
		return onboarding.StudyPlan{}, invalid("study plan", "no JSON object in completion")
	}
	var wire wirePlan
	if err := json.Unmarshal([]byte(block), &wire); err != nil {
		return onboarding.StudyPlan{}, invalid("study plan", "decode: %v", err)
	}
	plan := onboarding.StudyPlan{
		Title:    firstNonEmpty(strings.TrimSpace(wire.Title), req.Title, e.cat.Fallback.PlanTitle),
		Overview: strings.TrimSpace(wire.Overview),
		Tips:     trimAll(wire.Tips),
	}
	for i, wd := range wire.Days {
		day := onboarding.StudyDay{DayNumber: i + 1}
		for j, ws := range wd.Sessions {
			kind := onboarding.SessionKind(strings.ToLower(strings.TrimSpace(firstNonEmpty(ws.Kind, ws.Type))))
			if kind == "" {
				kind = onboarding.SessionStudy
			}
			minutes := int(ws.DurationMinutes)
			if minutes == 0 {
				minutes = int(ws.Duration)
			}
			day.Sessions = append(day.Sessions, onboarding.StudySession{
				ID:              onboarding.SessionID(day.DayNumber, j),
				Title:           strings.TrimSpace(ws.Title),
				Kind:            kind,
				DurationMinutes: minutes,
				Topics:          trimAll(ws.Topics),
				Description:     strings.TrimSpace(ws.Description),
			})
		}
		plan.Days = append(plan.Days, day)
	}
	if err := ValidatePlan(plan, req.Days); err != nil {
		return onboarding.StudyPlan{}, err
	}
	assignDates(&plan, req.StartDate)
	if plan.Overview == "" {
		plan.Overview = strings.TrimSpace(e.cat.Fallback.PlanOverview)
	}
	if len(plan.Tips) == 0 {
		plan.Tips = e.Tips(req.LearningStyle)
	}
	e.stamp(&plan)
	return plan, nil
}

// ValidatePlan checks the structural shape of a decoded plan.
func ValidatePlan(p onboarding.StudyPlan, dayCount int) error {
	if len(p.Days) == 0 {
		return invalid("study plan", "no days")
	}
	if dayCount > 0 && len(p.Days) > dayCount {
		return invalid("study plan", "%d days exceeds requested %d", len(p.Days), dayCount)
	}
	for _, d := range p.Days {
		if len(d.Sessions) == 0 {
			return invalid("study plan", "day %d has no sessions", d.DayNumber)
		}
		for _, s := range d.Sessions {
			if s.Title == "" {
				return invalid("study plan", "session %s has no title", s.ID)
			}
			if !s.Kind.Valid() {
				return invalid("study plan", "session %s has unknown kind %q", s.ID, s.Kind)
			}
			if s.DurationMinutes <= 0 {
				return invalid("study plan", "session %s has non-positive duration", s.ID)
			}
		}
	}
	return nil
}

func (e *Extractor) StudyPlan(raw string, req onboarding.PlanRequest, content string) Result[onboarding.StudyPlan] {
	plan, err := e.ParseStudyPlan(raw, req)
	if err != nil {
		return Result[onboarding.StudyPlan]{Value: e.FallbackStudyPlan(content, req), Fallback: true, Reason: err.Error()}
	}
	return Result[onboarding.StudyPlan]{Value: plan}
}

func assignDates(p *onboarding.StudyPlan, start time.Time) {
	for i := range p.Days {
		p.Days[i].DayNumber = i + 1
		p.Days[i].Date = start.AddDate(0, 0, i).Format(dateLayout)
	}
}

func (e *Extractor) stamp(p *onboarding.StudyPlan) {
	p.ID = uuid.New()
	p.Timestamp = e.now()
	p.CompletedSessionIDs = []string{}
	p.RecomputeProgress()
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
