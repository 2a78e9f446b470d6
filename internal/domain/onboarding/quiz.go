package onboarding

import (
	"time"

	"github.com/google/uuid"
)

const QuizOptionCount = 4

type QuizQuestion struct {
	QuestionText       string   `json:"question_text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// Quiz is immutable once generated; regeneration replaces the record.
type Quiz struct {
	ID         uuid.UUID      `json:"id"`
	OwnerID    uuid.UUID      `json:"owner_id"`
	DocumentID uuid.UUID      `json:"document_id"`
	Questions  []QuizQuestion `json:"questions"`
	Fallback   bool           `json:"fallback"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (q Quiz) Owner() uuid.UUID { return q.OwnerID }

// QuizAnswers holds one selected option index per question, -1 when unanswered.
type QuizAnswers struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	QuizID    uuid.UUID `json:"quiz_id"`
	Answers   []int     `json:"answers"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a QuizAnswers) Owner() uuid.UUID { return a.OwnerID }

type QuizSubmitted struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	QuizID      uuid.UUID `json:"quiz_id"`
	Submitted   bool      `json:"submitted"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (s QuizSubmitted) Owner() uuid.UUID { return s.OwnerID }

type QuizScore struct {
	OwnerID uuid.UUID `json:"owner_id"`
	QuizID  uuid.UUID `json:"quiz_id"`
	Correct int       `json:"correct"`
	Total   int       `json:"total"`
	Percent int       `json:"percent"`
}

func (s QuizScore) Owner() uuid.UUID { return s.OwnerID }

// Score counts answers matching CorrectOptionIndex.
func Score(questions []QuizQuestion, answers []int) QuizScore {
	out := QuizScore{Total: len(questions)}
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectOptionIndex {
			out.Correct++
		}
	}
	out.Percent = percent(out.Correct, out.Total)
	return out
}
