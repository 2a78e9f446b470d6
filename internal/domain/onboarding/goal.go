package onboarding

import (
	"time"

	"github.com/google/uuid"
)

const GoalProgressStep = 5

type Goal struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	ProgressPercent int        `json:"progress_percent"`
	Category        string     `json:"category"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (g Goal) Owner() uuid.UUID { return g.OwnerID }

func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
