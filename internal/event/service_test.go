package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
)

var errQuery = errors.New("query error")

var eventTestColumns = []string{
	"id", "title", "activity_type", "activity_difficulty", "event_date", "start_time", "duration",
	"cover_image", "organizer_name", "organizer_avatar", "departure_place", "departure_transport",
	"meeting_location", "meeting_time", "meeting_transport", "ticket_price", "meeting_note",
	"stats_distance", "stats_elevation", "stats_total_height",
	"participants_count", "participants_max", "participants_waitlist", "participant_avatars",
	"description", "disclaimer", "route_id", "created_at", "updated_at",
}

func eventRow(rows *pgxmock.Rows, id, title string, date time.Time, start string) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(id, title, "hiking", "moderate", date, start, "2.5h",
		"https://img/cover.jpg", "Alex", "https://img/alex.jpg", "Bern HB", TransportTrain,
		"Bern HB", start, TransportTrain, "CHF 34", "Meet at the clock",
		"6 km", "250 m", "",
		1, 10, 0, []string{},
		"Easy walk", "", "eiger-trail", now, now)
}

func createArgs(title, transport, key string) []any {
	args := make([]any, 27)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[1] = title
	args[11] = transport
	args[26] = key
	return args
}

func TestCreateEvent(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO events .* ON CONFLICT \(idempotency_key\) .* RETURNING\s+id, title`).
		WithArgs(createArgs("Eiger walk", TransportTrain, "idem-1")...).
		WillReturnRows(eventRow(pgxmock.NewRows(eventTestColumns), "evt-1", "Eiger walk", date, "09:00"))

	created, err := NewService(mock).Create(context.Background(), Event{
		Title:              "Eiger walk",
		ActivityType:       "hiking",
		EventDate:          date,
		StartTime:          "09:00",
		DeparturePlace:     "Bern HB",
		DepartureTransport: TransportTrain,
		ParticipantsCount:  1,
		ParticipantsMax:    10,
		IdempotencyKey:     "idem-1",
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if created.ID != "evt-1" || created.ParticipantsCount != 1 || created.RouteID != "eiger-trail" {
		t.Fatalf("expected stored row, got %+v", created)
	}
	if created.IdempotencyKey != "idem-1" {
		t.Fatalf("expected idempotency key kept, got %q", created.IdempotencyKey)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateEventRetryReturnsStoredRow(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	// the row written by the first attempt, before the user renamed the event
	mock.ExpectQuery(`INSERT INTO events .* ON CONFLICT \(idempotency_key\)`).
		WithArgs(createArgs("Renamed walk", TransportNone, "idem-1")...).
		WillReturnRows(eventRow(pgxmock.NewRows(eventTestColumns), "evt-first", "Eiger walk", date, "08:00"))

	created, err := NewService(mock).Create(context.Background(), Event{
		Title:              "Renamed walk",
		ActivityType:       "cycling",
		EventDate:          date,
		StartTime:          "10:30",
		DeparturePlace:     PlaceTBD,
		DepartureTransport: TransportNone,
		IdempotencyKey:     "idem-1",
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if created.ID != "evt-first" || created.Title != "Eiger walk" || created.StartTime != "08:00" {
		t.Fatalf("expected the stored record, got %+v", created)
	}
	if created.ActivityType != "hiking" || created.DepartureTransport != TransportTrain {
		t.Fatalf("expected stored fields, got %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateEventError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO events`).WillReturnError(errQuery)

	if _, err := NewService(mock).Create(context.Background(), Event{Title: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListEventsOrdered(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	rows := pgxmock.NewRows(eventTestColumns)
	eventRow(rows, "e1", "Morning", time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), "08:00")
	eventRow(rows, "e2", "Noon", time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), "12:00")
	mock.ExpectQuery(`FROM events\s+ORDER BY event_date ASC, start_time ASC`).WillReturnRows(rows)

	events, err := NewService(mock).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].ID != "e1" || events[1].StartTime != "12:00" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].RouteID != "eiger-trail" || events[0].TicketPrice != "CHF 34" {
		t.Fatalf("unexpected fields")
	}
}

func TestListEventsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM events`).WillReturnError(errQuery)
	if _, err := NewService(mock).List(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetEvent(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM events WHERE id=\$1`).
		WithArgs("e1").
		WillReturnRows(eventRow(pgxmock.NewRows(eventTestColumns), "e1", "Morning", time.Now(), "08:00"))
	mock.ExpectQuery(`FROM events WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	e, err := svc.Get(context.Background(), "e1")
	if err != nil || e.Title != "Morning" {
		t.Fatalf("get: %v", err)
	}

	_, err = svc.Get(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
