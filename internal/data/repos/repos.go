package repos

import (
	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// Logical collection names in the key-value store.
const (
	CollectionDocuments        = "documents"
	CollectionGoals            = "goals"
	CollectionQuiz             = "quiz"
	CollectionQuizAnswers      = "quiz-answers"
	CollectionQuizSubmitted    = "quiz-submitted"
	CollectionQuizScore        = "quiz-score"
	CollectionStudyPlan        = "study-plan"
	CollectionStudyPlanHistory = "study-plan-history"

	PrefActiveTab     = "active-tab"
	PrefUploadType    = "upload-type"
	PrefExtractedText = "extracted-text"
	PrefSummary       = "summary"
)

var PrefNames = []string{PrefActiveTab, PrefUploadType, PrefExtractedText, PrefSummary}

type Set struct {
	Documents  DocumentRepo
	Goals      GoalRepo
	Quizzes    QuizRepo
	StudyPlans StudyPlanRepo
	Prefs      PrefsRepo
}

// New builds every repo over one store. All repos share a lock table so a
// collection is never read-modify-written concurrently.
func New(store kvstore.Store, log *logger.Logger) Set {
	locks := kvstore.NewLocks()
	return Set{
		Documents:  NewDocumentRepo(store, locks, log),
		Goals:      NewGoalRepo(store, locks, log),
		Quizzes:    NewQuizRepo(store, locks, log),
		StudyPlans: NewStudyPlanRepo(store, locks, log),
		Prefs:      NewPrefsRepo(store, locks, log),
	}
}
