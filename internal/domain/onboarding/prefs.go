package onboarding

import (
	"time"

	"github.com/google/uuid"
)

// PrefValue is a single per-owner primitive stored under a named collection.
type PrefValue struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p PrefValue) Owner() uuid.UUID { return p.OwnerID }

type CalendarEvent struct {
	Summary         string      `json:"summary"`
	Description     string      `json:"description"`
	Start           time.Time   `json:"start"`
	End             time.Time   `json:"end"`
	TimeZone        string      `json:"time_zone"`
	ReminderMinutes []int       `json:"reminder_minutes,omitempty"`
	Kind            SessionKind `json:"kind"`
}

type BreakBlock struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Dashboard struct {
	Documents           int  `json:"documents"`
	Goals               int  `json:"goals"`
	AverageGoalProgress int  `json:"average_goal_progress"`
	PlanProgress        int  `json:"plan_progress"`
	LastQuizPercent     int  `json:"last_quiz_percent"`
	QuizSubmitted       bool `json:"quiz_submitted"`
}
