package onboarding

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SessionKind string

const (
	SessionStudy    SessionKind = "study"
	SessionBreak    SessionKind = "break"
	SessionReview   SessionKind = "review"
	SessionPractice SessionKind = "practice"
)

func (k SessionKind) Valid() bool {
	switch k {
	case SessionStudy, SessionBreak, SessionReview, SessionPractice:
		return true
	}
	return false
}

type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleReading     LearningStyle = "reading"
	StyleKinesthetic LearningStyle = "kinesthetic"
)

// ParseLearningStyle defaults to visual for anything unrecognised.
func ParseLearningStyle(raw string) LearningStyle {
	style := LearningStyle(strings.ToLower(strings.TrimSpace(raw)))
	switch style {
	case StyleAuditory, StyleReading, StyleKinesthetic, StyleVisual:
		return style
	default:
		return StyleVisual
	}
}

type StudySession struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Kind            SessionKind `json:"kind"`
	DurationMinutes int         `json:"duration_minutes"`
	Topics          []string    `json:"topics"`
	Description     string      `json:"description"`
}

type StudyDay struct {
	DayNumber int            `json:"day_number"`
	Date      string         `json:"date"`
	Sessions  []StudySession `json:"sessions"`
}

type StudyPlan struct {
	ID                  uuid.UUID  `json:"id"`
	OwnerID             uuid.UUID  `json:"owner_id"`
	DocumentID          uuid.UUID  `json:"document_id,omitempty"`
	Title               string     `json:"title"`
	Overview            string     `json:"overview"`
	Days                []StudyDay `json:"days"`
	Tips                []string   `json:"tips"`
	CompletedSessionIDs []string   `json:"completed_session_ids"`
	ProgressPercent     int        `json:"progress_percent"`
	Timestamp           time.Time  `json:"timestamp"`
	Fallback            bool       `json:"fallback"`
}

func (p StudyPlan) Owner() uuid.UUID { return p.OwnerID }

// PlanRequest carries the learner preferences a plan is generated from.
type PlanRequest struct {
	Title         string        `json:"title"`
	Days          int           `json:"days"`
	TimeAvailable int           `json:"time_available"`
	LearningStyle LearningStyle `json:"learning_style"`
	Goals         string        `json:"goals"`
	StartDate     time.Time     `json:"start_date"`
}

const (
	DefaultPlanDays      = 5
	MaxPlanDays          = 14
	DefaultTimeAvailable = 60
)

// Normalize fills defaults and clamps days into [1, MaxPlanDays].
func (r PlanRequest) Normalize() PlanRequest {
	if r.Days <= 0 {
		r.Days = DefaultPlanDays
	}
	if r.Days > MaxPlanDays {
		r.Days = MaxPlanDays
	}
	if r.TimeAvailable <= 0 {
		r.TimeAvailable = DefaultTimeAvailable
	}
	r.LearningStyle = ParseLearningStyle(string(r.LearningStyle))
	if r.StartDate.IsZero() {
		r.StartDate = time.Now().UTC()
	}
	return r
}

func (p *StudyPlan) TotalSessions() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Sessions)
	}
	return n
}

func (p *StudyPlan) hasSession(id string) bool {
	for _, d := range p.Days {
		for _, s := range d.Sessions {
			if s.ID == id {
				return true
			}
		}
	}
	return false
}

// ToggleSession flips completion of one session and recomputes progress.
func (p *StudyPlan) ToggleSession(sessionID string) error {
	if !p.hasSession(sessionID) {
		return fmt.Errorf("session %q not in plan %s", sessionID, p.ID)
	}
	kept := p.CompletedSessionIDs[:0:0]
	removed := false
	for _, id := range p.CompletedSessionIDs {
		if id == sessionID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, sessionID)
	}
	p.CompletedSessionIDs = kept
	p.RecomputeProgress()
	return nil
}

func (p *StudyPlan) RecomputeProgress() {
	p.ProgressPercent = percent(len(p.CompletedSessionIDs), p.TotalSessions())
}

// SessionID is the stable identifier for the n-th session of a day.
func SessionID(dayNumber, index int) string {
	return fmt.Sprintf("d%d-s%d", dayNumber, index+1)
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
