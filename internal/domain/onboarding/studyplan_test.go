package onboarding

import (
	"testing"
)

func planWithSessions(n int) StudyPlan {
	p := StudyPlan{}
	day := StudyDay{DayNumber: 1}
	for i := 0; i < n; i++ {
		day.Sessions = append(day.Sessions, StudySession{ID: SessionID(1, i), Kind: SessionStudy, DurationMinutes: 20})
	}
	p.Days = []StudyDay{day}
	return p
}

func TestToggleSessionRecomputesProgress(t *testing.T) {
	p := planWithSessions(3)
	steps := []struct {
		id   string
		want int
	}{
		{"d1-s1", 33},
		{"d1-s2", 67},
		{"d1-s3", 100},
		{"d1-s2", 67},
		{"d1-s1", 33},
	}
	for i, st := range steps {
		if err := p.ToggleSession(st.id); err != nil {
			t.Fatalf("step %d ToggleSession: %v", i, err)
		}
		if p.ProgressPercent != st.want {
			t.Fatalf("step %d progress: want=%d got=%d", i, st.want, p.ProgressPercent)
		}
	}
}

func TestToggleSessionUnknownID(t *testing.T) {
	p := planWithSessions(1)
	if err := p.ToggleSession("d9-s9"); err == nil {
		t.Fatalf("ToggleSession: expected error for unknown session")
	}
	if p.ProgressPercent != 0 {
		t.Fatalf("progress: want=0 got=%d", p.ProgressPercent)
	}
}

func TestPlanRequestNormalize(t *testing.T) {
	r := PlanRequest{Days: 40, LearningStyle: "smell"}.Normalize()
	if r.Days != MaxPlanDays {
		t.Fatalf("days: want=%d got=%d", MaxPlanDays, r.Days)
	}
	if r.LearningStyle != StyleVisual {
		t.Fatalf("style: want=%q got=%q", StyleVisual, r.LearningStyle)
	}
	if r.TimeAvailable != DefaultTimeAvailable {
		t.Fatalf("time: want=%d got=%d", DefaultTimeAvailable, r.TimeAvailable)
	}
	if r.StartDate.IsZero() {
		t.Fatalf("start date: want non-zero")
	}
}

func TestScoreAndClamp(t *testing.T) {
	qs := []QuizQuestion{{CorrectOptionIndex: 1}, {CorrectOptionIndex: 3}, {CorrectOptionIndex: 0}}
	s := Score(qs, []int{1, 2})
	if s.Correct != 1 || s.Total != 3 || s.Percent != 33 {
		t.Fatalf("score: want=1/3 33%% got=%d/%d %d%%", s.Correct, s.Total, s.Percent)
	}
	if ClampProgress(120) != 100 || ClampProgress(-5) != 0 || ClampProgress(75) != 75 {
		t.Fatalf("ClampProgress out of range")
	}
}
