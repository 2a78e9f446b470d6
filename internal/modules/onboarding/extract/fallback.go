package extract

import (
	"fmt"
	"regexp"

	"github.com/yungbote/onboarding-backend/internal/domain/onboarding"
)

const (
	minutesPerSession = 30
	minSessionsPerDay = 2
	maxSessionsPerDay = 4
	minSessionMinutes = 10
	minScannedTopics  = 3
	maxScannedTopics  = 12
)

var capitalizedWordRe = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)

var sentenceStarters = map[string]struct{}{
	"The": {}, "This": {}, "That": {}, "These": {}, "Those": {}, "There": {},
	"When": {}, "What": {}, "Where": {}, "Who": {}, "Why": {}, "How": {},
	"You": {}, "Your": {}, "And": {}, "For": {}, "With": {}, "Our": {},
	"All": {}, "Any": {}, "Each": {}, "Please": {},
}

// ScanTopics returns distinct capitalised words in first-seen order.
func ScanTopics(content string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, w := range capitalizedWordRe.FindAllString(content, -1) {
		if _, stop := sentenceStarters[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxScannedTopics {
			break
		}
	}
	return out
}

// SessionsPerDay is clamp(floor(timeAvailable/30), 2, 4).
func SessionsPerDay(timeAvailable int) int {
	n := timeAvailable / minutesPerSession
	if n < minSessionsPerDay {
		return minSessionsPerDay
	}
	if n > maxSessionsPerDay {
		return maxSessionsPerDay
	}
	return n
}

// FallbackStudyPlan builds a plan without the model. Equal inputs give
// structurally equal plans.
func (e *Extractor) FallbackStudyPlan(content string, req onboarding.PlanRequest) onboarding.StudyPlan {
	req = req.Normalize()
	topics := ScanTopics(content)
	if len(topics) < minScannedTopics {
		topics = append([]string(nil), e.cat.Fallback.Topics...)
	}
	perDay := SessionsPerDay(req.TimeAvailable)
	sessionMinutes := req.TimeAvailable / (perDay + 1)
	if sessionMinutes < minSessionMinutes {
		sessionMinutes = minSessionMinutes
	}
	review := e.cat.Fallback.ReviewSession

	plan := onboarding.StudyPlan{
		Title:    firstNonEmpty(req.Title, e.cat.Fallback.PlanTitle),
		Overview: e.cat.Fallback.PlanOverview,
		Tips:     e.Tips(req.LearningStyle),
		Fallback: true,
	}
	for d := 0; d < req.Days; d++ {
		day := onboarding.StudyDay{DayNumber: d + 1}
		add := func(s onboarding.StudySession) {
			s.ID = onboarding.SessionID(day.DayNumber, len(day.Sessions))
			day.Sessions = append(day.Sessions, s)
		}
		for s := 0; s < perDay; s++ {
			topic := topics[(d*perDay+s)%len(topics)]
			add(onboarding.StudySession{
				Title:           "Study: " + topic,
				Kind:            onboarding.SessionStudy,
				DurationMinutes: sessionMinutes,
				Topics:          []string{topic},
				Description:     fmt.Sprintf("Work through the material on %s and note anything unclear.", topic),
			})
			if s < perDay-1 {
				add(onboarding.StudySession{
					Title:           "Short Break",
					Kind:            onboarding.SessionBreak,
					DurationMinutes: e.cat.Fallback.BreakMinutes,
					Topics:          []string{},
					Description:     "Step away from the screen and stretch.",
				})
			}
		}
		add(onboarding.StudySession{
			Title:           review.Title,
			Kind:            onboarding.SessionReview,
			DurationMinutes: review.Minutes,
			Topics:          []string{},
			Description:     review.Description,
		})
		plan.Days = append(plan.Days, day)
	}
	assignDates(&plan, req.StartDate)
	e.stamp(&plan)
	return plan
}

// Tips is the four generic tips followed by up to three for the style.
func (e *Extractor) Tips(style onboarding.LearningStyle) []string {
	out := append([]string(nil), e.cat.Tips.Generic...)
	return append(out, e.cat.StyleTips(style)...)
}
