package repos

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// QuizRepo stores the owner's current quiz and the answer state that goes
// with it. Each collection holds at most one record per owner.
type QuizRepo interface {
	Replace(ctx context.Context, quiz types.Quiz) error
	Current(ctx context.Context, ownerID uuid.UUID) (*types.Quiz, error)

	Answers(ctx context.Context, ownerID uuid.UUID) (*types.QuizAnswers, error)
	SetAnswers(ctx context.Context, answers types.QuizAnswers) error

	Submitted(ctx context.Context, ownerID uuid.UUID) (*types.QuizSubmitted, error)
	SetSubmitted(ctx context.Context, s types.QuizSubmitted) error

	Score(ctx context.Context, ownerID uuid.UUID) (*types.QuizScore, error)
	SetScore(ctx context.Context, s types.QuizScore) error
}

type quizRepo struct {
	quiz      ownerSingleton[types.Quiz]
	answers   ownerSingleton[types.QuizAnswers]
	submitted ownerSingleton[types.QuizSubmitted]
	score     ownerSingleton[types.QuizScore]
	log       *logger.Logger
}

func NewQuizRepo(store kvstore.Store, locks *kvstore.Locks, baseLog *logger.Logger) QuizRepo {
	repoLog := baseLog.With("repo", "QuizRepo")
	return &quizRepo{
		quiz:      ownerSingleton[types.Quiz]{col: kvstore.NewCollection[types.Quiz](store, locks, CollectionQuiz, repoLog)},
		answers:   ownerSingleton[types.QuizAnswers]{col: kvstore.NewCollection[types.QuizAnswers](store, locks, CollectionQuizAnswers, repoLog)},
		submitted: ownerSingleton[types.QuizSubmitted]{col: kvstore.NewCollection[types.QuizSubmitted](store, locks, CollectionQuizSubmitted, repoLog)},
		score:     ownerSingleton[types.QuizScore]{col: kvstore.NewCollection[types.QuizScore](store, locks, CollectionQuizScore, repoLog)},
		log:       repoLog,
	}
}

// Replace swaps in a new quiz and clears the previous answer state.
func (r *quizRepo) Replace(ctx context.Context, quiz types.Quiz) error {
	if err := r.quiz.put(ctx, quiz); err != nil {
		return err
	}
	owner := quiz.OwnerID
	if err := r.answers.clear(ctx, owner); err != nil {
		return err
	}
	if err := r.submitted.clear(ctx, owner); err != nil {
		return err
	}
	return r.score.clear(ctx, owner)
}

func (r *quizRepo) Current(ctx context.Context, ownerID uuid.UUID) (*types.Quiz, error) {
	return r.quiz.get(ctx, ownerID)
}

func (r *quizRepo) Answers(ctx context.Context, ownerID uuid.UUID) (*types.QuizAnswers, error) {
	return r.answers.get(ctx, ownerID)
}

func (r *quizRepo) SetAnswers(ctx context.Context, answers types.QuizAnswers) error {
	return r.answers.put(ctx, answers)
}

func (r *quizRepo) Submitted(ctx context.Context, ownerID uuid.UUID) (*types.QuizSubmitted, error) {
	return r.submitted.get(ctx, ownerID)
}

func (r *quizRepo) SetSubmitted(ctx context.Context, s types.QuizSubmitted) error {
	return r.submitted.put(ctx, s)
}

func (r *quizRepo) Score(ctx context.Context, ownerID uuid.UUID) (*types.QuizScore, error) {
	return r.score.get(ctx, ownerID)
}

func (r *quizRepo) SetScore(ctx context.Context, s types.QuizScore) error {
	return r.score.put(ctx, s)
}
