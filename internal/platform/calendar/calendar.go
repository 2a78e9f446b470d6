package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// Credentials selects how an insert authenticates. A user access token wins
// over service credentials.
type Credentials struct {
	AccessToken string
}

type Inserter interface {
	Insert(ctx context.Context, creds Credentials, calendarID string, ev types.CalendarEvent) (string, error)
}

type googleInserter struct {
	log      *logger.Logger
	endpoint string
}

// NewGoogleInserter talks to Calendar v3. endpoint overrides the API base
// URL and is empty in production.
func NewGoogleInserter(log *logger.Logger, endpoint string) Inserter {
	return &googleInserter{log: log.With("service", "CalendarInserter"), endpoint: endpoint}
}

func (g *googleInserter) clientOptions(creds Credentials) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(creds.AccessToken) != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	case gcp.HasCredentials():
		opts = append(opts, gcp.ClientOptionsFromEnv(gcal.CalendarEventsScope)...)
	default:
		return nil, apierr.AuthRequired("calendar credentials missing")
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	return opts, nil
}

func (g *googleInserter) Insert(ctx context.Context, creds Credentials, calendarID string, ev types.CalendarEvent) (string, error) {
	opts, err := g.clientOptions(creds)
	if err != nil {
		return "", err
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	created, err := svc.Events.Insert(calendarID, ToGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	g.log.Debug("Calendar event created", "event_id", created.Id, "kind", ev.Kind)
	return created.Id, nil
}

// ToGoogleEvent maps an event onto the v3 wire shape with popup reminders.
func ToGoogleEvent(ev types.CalendarEvent) *gcal.Event {
	out := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.TimeZone},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.TimeZone},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, m := range ev.ReminderMinutes {
		out.Reminders.Overrides = append(out.Reminders.Overrides, &gcal.EventReminder{Method: "popup", Minutes: int64(m)})
	}
	return out
}
