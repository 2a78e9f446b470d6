package services

import (
	"context"
	"time"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// QuizState is everything the quiz screen needs in one read.
type QuizState struct {
	Quiz      *types.Quiz      `json:"quiz"`
	Answers   []int            `json:"answers"`
	Submitted bool             `json:"submitted"`
	Score     *types.QuizScore `json:"score,omitempty"`
}

type QuizService interface {
	Current(ctx context.Context) (*QuizState, error)
	SaveAnswers(ctx context.Context, answers []int) (*QuizState, error)
	Submit(ctx context.Context) (*QuizState, error)
}

type quizService struct {
	log     *logger.Logger
	quizzes repos.QuizRepo
	now     func() time.Time
}

func NewQuizService(log *logger.Logger, quizzes repos.QuizRepo) QuizService {
	return &quizService{
		log:     log.With("service", "QuizService"),
		quizzes: quizzes,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (qs *quizService) Current(ctx context.Context) (*QuizState, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	quiz, err := qs.quizzes.Current(ctx, owner)
	if err != nil {
		return nil, err
	}
	state := &QuizState{Quiz: quiz, Answers: []int{}}
	if quiz == nil {
		return state, nil
	}
	state.Answers = unanswered(len(quiz.Questions))
	if a, err := qs.quizzes.Answers(ctx, owner); err != nil {
		return nil, err
	} else if a != nil && a.QuizID == quiz.ID {
		state.Answers = a.Answers
	}
	if s, err := qs.quizzes.Submitted(ctx, owner); err != nil {
		return nil, err
	} else if s != nil && s.QuizID == quiz.ID {
		state.Submitted = s.Submitted
	}
	if sc, err := qs.quizzes.Score(ctx, owner); err != nil {
		return nil, err
	} else if sc != nil && sc.QuizID == quiz.ID {
		state.Score = sc
	}
	return state, nil
}

func unanswered(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

// SaveAnswers stores one option index per question; -1 marks unanswered.
func (qs *quizService) SaveAnswers(ctx context.Context, answers []int) (*QuizState, error) {
	state, err := qs.Current(ctx)
	if err != nil {
		return nil, err
	}
	if state.Quiz == nil {
		return nil, apierr.NotFound("quiz")
	}
	if state.Submitted {
		return nil, apierr.Validation("quiz already submitted")
	}
	if len(answers) != len(state.Quiz.Questions) {
		return nil, apierr.Validation("expected %d answers, got %d", len(state.Quiz.Questions), len(answers))
	}
	for i, a := range answers {
		if a < -1 || a >= types.QuizOptionCount {
			return nil, apierr.Validation("answer %d out of range", i)
		}
	}
	rec := types.QuizAnswers{OwnerID: state.Quiz.OwnerID, QuizID: state.Quiz.ID, Answers: answers, UpdatedAt: qs.now()}
	if err := qs.quizzes.SetAnswers(ctx, rec); err != nil {
		return nil, err
	}
	state.Answers = answers
	return state, nil
}

func (qs *quizService) Submit(ctx context.Context) (*QuizState, error) {
	state, err := qs.Current(ctx)
	if err != nil {
		return nil, err
	}
	if state.Quiz == nil {
		return nil, apierr.NotFound("quiz")
	}
	if state.Submitted {
		return state, nil
	}
	for i, a := range state.Answers {
		if a < 0 {
			return nil, apierr.Validation("question %d is unanswered", i)
		}
	}
	score := types.Score(state.Quiz.Questions, state.Answers)
	score.OwnerID = state.Quiz.OwnerID
	score.QuizID = state.Quiz.ID
	if err := qs.quizzes.SetScore(ctx, score); err != nil {
		return nil, err
	}
	sub := types.QuizSubmitted{OwnerID: state.Quiz.OwnerID, QuizID: state.Quiz.ID, Submitted: true, SubmittedAt: qs.now()}
	if err := qs.quizzes.SetSubmitted(ctx, sub); err != nil {
		return nil, err
	}
	qs.log.Info("Quiz submitted", "quiz_id", state.Quiz.ID, "percent", score.Percent)
	state.Submitted = true
	state.Score = &score
	return state, nil
}
