package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/calendar"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

const (
	DefaultBreakFrequency  = 25
	DefaultBreakDuration   = 5
	DefaultReminderMinutes = 10
)

// ScheduleBreaks places floor((session-freq)/(freq+dur)) breaks inside
// [start,end]. Break k starts at start+freq+k*(freq+dur). All values are
// minutes.
func ScheduleBreaks(start, end time.Time, breakFrequency, breakDuration int) []types.BreakBlock {
	sessionMinutes := int(end.Sub(start) / time.Minute)
	if breakFrequency <= 0 || breakDuration <= 0 || sessionMinutes <= breakFrequency {
		return nil
	}
	cycle := breakFrequency + breakDuration
	n := (sessionMinutes - breakFrequency) / cycle
	out := make([]types.BreakBlock, 0, n)
	for k := 0; k < n; k++ {
		bs := start.Add(time.Duration(breakFrequency+k*cycle) * time.Minute)
		be := bs.Add(time.Duration(breakDuration) * time.Minute)
		if be.After(end) {
			break
		}
		out = append(out, types.BreakBlock{Start: bs, End: be})
	}
	return out
}

type SessionRequest struct {
	Summary         string    `json:"summary"`
	Description     string    `json:"description"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	TimeZone        string    `json:"time_zone"`
	CalendarID      string    `json:"calendar_id"`
	ReminderMinutes int       `json:"reminder_minutes"`
	IncludeBreaks   bool      `json:"include_breaks"`
	BreakFrequency  int       `json:"break_frequency"`
	BreakDuration   int       `json:"break_duration"`
}

type ScheduledSession struct {
	EventIDs []string              `json:"event_ids"`
	Events   []types.CalendarEvent `json:"events"`
	Breaks   []types.BreakBlock    `json:"breaks"`
}

type CalendarService interface {
	ScheduleSession(ctx context.Context, creds calendar.Credentials, req SessionRequest) (*ScheduledSession, error)
}

type calendarService struct {
	log      *logger.Logger
	inserter calendar.Inserter
	timeout  time.Duration
}

func NewCalendarService(log *logger.Logger, inserter calendar.Inserter, timeout time.Duration) CalendarService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &calendarService{log: log.With("service", "CalendarService"), inserter: inserter, timeout: timeout}
}

func (req *SessionRequest) validate() error {
	req.Summary = strings.TrimSpace(req.Summary)
	if req.Summary == "" {
		return apierr.Validation("summary is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return apierr.Validation("start and end are required")
	}
	if !req.End.After(req.Start) {
		return apierr.Validation("end must be after start")
	}
	if tz := strings.TrimSpace(req.TimeZone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return apierr.Validation("unknown time zone %q", tz)
		}
	}
	if req.ReminderMinutes < 0 || req.BreakFrequency < 0 || req.BreakDuration < 0 {
		return apierr.Validation("minutes must not be negative")
	}
	if req.ReminderMinutes == 0 {
		req.ReminderMinutes = DefaultReminderMinutes
	}
	if req.BreakFrequency == 0 {
		req.BreakFrequency = DefaultBreakFrequency
	}
	if req.BreakDuration == 0 {
		req.BreakDuration = DefaultBreakDuration
	}
	return nil
}

// ScheduleSession inserts the study event and, when asked, one event per
// break. The whole call is bounded by the calendar timeout.
func (cs *calendarService) ScheduleSession(ctx context.Context, creds calendar.Credentials, req SessionRequest) (*ScheduledSession, error) {
	if _, err := requireOwner(ctx); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cs.timeout)
	defer cancel()

	out := &ScheduledSession{}
	out.Events = append(out.Events, types.CalendarEvent{
		Summary:         req.Summary,
		Description:     req.Description,
		Start:           req.Start,
		End:             req.End,
		TimeZone:        req.TimeZone,
		ReminderMinutes: []int{req.ReminderMinutes},
		Kind:            types.SessionStudy,
	})
	if req.IncludeBreaks {
		out.Breaks = ScheduleBreaks(req.Start, req.End, req.BreakFrequency, req.BreakDuration)
		for i, b := range out.Breaks {
			out.Events = append(out.Events, types.CalendarEvent{
				Summary:         fmt.Sprintf("Break %d: %s", i+1, req.Summary),
				Description:     "Short break. Step away from the screen.",
				Start:           b.Start,
				End:             b.End,
				TimeZone:        req.TimeZone,
				ReminderMinutes: []int{1},
				Kind:            types.SessionBreak,
			})
		}
	}

	for _, ev := range out.Events {
		id, err := cs.inserter.Insert(ctx, creds, req.CalendarID, ev)
		if err != nil {
			cs.log.Warn("Calendar insert failed", "inserted", len(out.EventIDs), "error", err)
			return out, err
		}
		out.EventIDs = append(out.EventIDs, id)
	}
	cs.log.Info("Calendar session scheduled", "events", len(out.EventIDs), "breaks", len(out.Breaks))
	return out, nil
}
