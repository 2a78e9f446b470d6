package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/yungbote/onboarding-backend/internal/domain/onboarding"
)

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// wireQuestion accepts the field spellings models tend to produce.
type wireQuestion struct {
	Question           string   `json:"question"`
	QuestionText       string   `json:"questionText"`
	QuestionTextSnake  string   `json:"question_text"`
	Options            []string `json:"options"`
	CorrectAnswer      *int     `json:"correctAnswer"`
	CorrectOptionIndex *int     `json:"correctOptionIndex"`
	CorrectIndexSnake  *int     `json:"correct_option_index"`
}

func (w wireQuestion) toDomain() onboarding.QuizQuestion {
	text := firstNonEmpty(w.Question, w.QuestionText, w.QuestionTextSnake)
	idx := -1
	for _, p := range []*int{w.CorrectAnswer, w.CorrectOptionIndex, w.CorrectIndexSnake} {
		if p != nil {
			idx = *p
			break
		}
	}
	opts := make([]string, 0, len(w.Options))
	for _, o := range w.Options {
		opts = append(opts, strings.TrimSpace(o))
	}
	return onboarding.QuizQuestion{
		QuestionText:       strings.TrimSpace(text),
		Options:            opts,
		CorrectOptionIndex: idx,
	}
}

// ParseQuiz decodes the first JSON array in raw and validates it.
func ParseQuiz(raw string) ([]onboarding.QuizQuestion, error) {
	block := jsonArrayRe.FindString(raw)
	if block == "" {
		return nil, invalid("quiz", "no JSON array in completion")
	}
	var wire []wireQuestion
	if err := json.Unmarshal([]byte(block), &wire); err != nil {
		return nil, invalid("quiz", "decode: %v", err)
	}
	out := make([]onboarding.QuizQuestion, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toDomain())
	}
	if err := ValidateQuiz(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateQuiz rejects the whole quiz if any question is malformed.
func ValidateQuiz(qs []onboarding.QuizQuestion) error {
	if len(qs) == 0 {
		return invalid("quiz", "no questions")
	}
	for i, q := range qs {
		if q.QuestionText == "" {
			return invalid("quiz", "question %d has no text", i)
		}
		if len(q.Options) != onboarding.QuizOptionCount {
			return invalid("quiz", "question %d has %d options", i, len(q.Options))
		}
		for j, o := range q.Options {
			if strings.TrimSpace(o) == "" {
				return invalid("quiz", "question %d option %d is blank", i, j)
			}
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= onboarding.QuizOptionCount {
			return invalid("quiz", "question %d correct index %d out of range", i, q.CorrectOptionIndex)
		}
	}
	return nil
}

func (e *Extractor) Quiz(raw string) Result[[]onboarding.QuizQuestion] {
	qs, err := ParseQuiz(raw)
	if err != nil {
		return Result[[]onboarding.QuizQuestion]{Value: e.cat.FallbackQuiz(), Fallback: true, Reason: err.Error()}
	}
	return Result[[]onboarding.QuizQuestion]{Value: qs}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
