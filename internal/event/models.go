package event

import "time"

// Transport kinds stored in departure_transport.
const (
	TransportTrain   = "train"
	TransportBus     = "bus"
	TransportCarpool = "carpool"
	TransportNone    = "none"
)

// PlaceTBD marks an event that has no departure point yet.
const PlaceTBD = "TBD"

type Event struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	ActivityType       string    `json:"activity_type"`
	ActivityDifficulty string    `json:"activity_difficulty,omitempty"`
	EventDate          time.Time `json:"event_date"`
	StartTime          string    `json:"start_time"`
	Duration           string    `json:"duration"`
	CoverImage         string    `json:"cover_image"`
	OrganizerName      string    `json:"organizer_name"`
	OrganizerAvatar    string    `json:"organizer_avatar"`
	DeparturePlace     string    `json:"departure_place"`
	DepartureTransport string    `json:"departure_transport"`
	MeetingLocation    string    `json:"meeting_location,omitempty"`
	MeetingTime        string    `json:"meeting_time,omitempty"`
	MeetingTransport   string    `json:"meeting_transport,omitempty"`
	TicketPrice        string    `json:"ticket_price,omitempty"`
	MeetingNote        string    `json:"meeting_note,omitempty"`
	StatsDistance      string    `json:"stats_distance"`
	StatsElevation     string    `json:"stats_elevation"`
	StatsTotalHeight   string    `json:"stats_total_height"`
	ParticipantsCount  int       `json:"participants_count"`
	ParticipantsMax    int       `json:"participants_max"`
	ParticipantsWait   int       `json:"participants_waitlist"`
	ParticipantAvatars []string  `json:"participant_avatars"`
	Description        string    `json:"description,omitempty"`
	Disclaimer         string    `json:"disclaimer,omitempty"`
	RouteID            string    `json:"route_id,omitempty"`
	IdempotencyKey     string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Group is one date heading in the event list.
type Group struct {
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}
