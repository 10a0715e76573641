package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/db"
)

// eventColumns is shared by SELECT and RETURNING so both scan through scanEvent.
const eventColumns = `
	id, title, activity_type, COALESCE(activity_difficulty, ''), event_date, start_time, duration,
	cover_image, organizer_name, organizer_avatar, departure_place, departure_transport,
	COALESCE(meeting_location, ''), COALESCE(meeting_time, ''), COALESCE(meeting_transport, ''),
	COALESCE(ticket_price, ''), COALESCE(meeting_note, ''),
	stats_distance, stats_elevation, stats_total_height,
	participants_count, participants_max, participants_waitlist, participant_avatars,
	COALESCE(description, ''), COALESCE(disclaimer, ''), COALESCE(route_id, ''),
	created_at, updated_at`

const selectColumns = `SELECT` + eventColumns + `
	FROM events`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Create inserts one event. A repeated idempotency key returns the row already
// stored for it, untouched by the new input.
func (s *Service) Create(ctx context.Context, input Event) (Event, error) {
	input.ID = uuid.NewString()
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = uuid.NewString()
	}
	if input.ParticipantAvatars == nil {
		input.ParticipantAvatars = []string{}
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO events (id, title, activity_type, activity_difficulty, event_date, start_time, duration,
		                    cover_image, organizer_name, organizer_avatar, departure_place, departure_transport,
		                    meeting_location, meeting_time, meeting_transport, ticket_price, meeting_note,
		                    stats_distance, stats_elevation, stats_total_height,
		                    participants_count, participants_max, participant_avatars,
		                    description, disclaimer, route_id, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)
		ON CONFLICT (idempotency_key) DO UPDATE SET idempotency_key = EXCLUDED.idempotency_key
		RETURNING`+eventColumns,
		input.ID, input.Title, input.ActivityType, nullable(input.ActivityDifficulty), input.EventDate, input.StartTime, input.Duration,
		input.CoverImage, input.OrganizerName, input.OrganizerAvatar, input.DeparturePlace, input.DepartureTransport,
		nullable(input.MeetingLocation), nullable(input.MeetingTime), nullable(input.MeetingTransport), nullable(input.TicketPrice), nullable(input.MeetingNote),
		input.StatsDistance, input.StatsElevation, input.StatsTotalHeight,
		input.ParticipantsCount, input.ParticipantsMax, input.ParticipantAvatars,
		nullable(input.Description), nullable(input.Disclaimer), nullable(input.RouteID), input.IdempotencyKey)
	stored, err := scanEvent(row)
	if err != nil {
		return Event{}, err
	}
	stored.IdempotencyKey = input.IdempotencyKey
	return stored, nil
}

// List returns every event in calendar order.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.Query(ctx, selectColumns+`
		ORDER BY event_date ASC, start_time ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	e, err := scanEvent(s.db.QueryRow(ctx, selectColumns+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, apperror.Clone(apperror.ErrNotFound, "event not found")
	}
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.ActivityType, &e.ActivityDifficulty, &e.EventDate, &e.StartTime, &e.Duration,
		&e.CoverImage, &e.OrganizerName, &e.OrganizerAvatar, &e.DeparturePlace, &e.DepartureTransport,
		&e.MeetingLocation, &e.MeetingTime, &e.MeetingTransport, &e.TicketPrice, &e.MeetingNote,
		&e.StatsDistance, &e.StatsElevation, &e.StatsTotalHeight,
		&e.ParticipantsCount, &e.ParticipantsMax, &e.ParticipantsWait, &e.ParticipantAvatars,
		&e.Description, &e.Disclaimer, &e.RouteID,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
