package wizard

import "time"

type ActivityType string

const (
	ActivityHiking     ActivityType = "hiking"
	ActivityCycling    ActivityType = "cycling"
	ActivityClimbing   ActivityType = "climbing"
	ActivitySkiing     ActivityType = "skiing"
	ActivityBouldering ActivityType = "bouldering"
	ActivitySocial     ActivityType = "social"
)

// RouteBased activities pick a catalog route in step 2.
func (a ActivityType) RouteBased() bool {
	switch a {
	case ActivityHiking, ActivityCycling, ActivityClimbing:
		return true
	}
	return false
}

type TransportType string

const (
	TransportPublic TransportType = "public"
	TransportCar    TransportType = "car"
	TransportNone   TransportType = "none"
)

type PublicTransport struct {
	MeetingPoint string `json:"meeting_point"`
	TicketCost   string `json:"ticket_cost"`
	Instructions string `json:"instructions"`
}

type CarTransport struct {
	PickupLocation string `json:"pickup_location"`
	FuelCost       string `json:"fuel_cost"`
	CarDescription string `json:"car_description"`
}

// Draft is the in-progress event form. Nil pointers are unset fields.
type Draft struct {
	ActivityType    *ActivityType   `json:"activity_type"`
	RouteID         *string         `json:"route_id"`
	Date            *time.Time      `json:"date"`
	Time            *string         `json:"time"`
	EventName       string          `json:"event_name"`
	MaxParticipants int             `json:"max_participants"`
	Description     string          `json:"description"`
	AddDisclaimer   bool            `json:"add_disclaimer"`
	DisclaimerText  string          `json:"disclaimer_text"`
	TransportType   *TransportType  `json:"transport_type"`
	PublicTransport PublicTransport `json:"public_transport"`
	CarTransport    CarTransport    `json:"car_transport"`
	IdempotencyKey  string          `json:"idempotency_key"`
}

// storedDraft is the persisted form: the draft plus the step it was left on.
// Date serialises as an ISO-8601 string or null.
type storedDraft struct {
	Draft
	CurrentStep Step `json:"current_step"`
}

// Patch carries the fields a client changes; nil means untouched.
type Patch struct {
	ActivityType    *ActivityType         `json:"activity_type" validate:"omitempty,oneof=hiking cycling climbing skiing bouldering social"`
	RouteID         *string               `json:"route_id" validate:"omitempty,max=64"`
	Date            *string               `json:"date"`
	Time            *string               `json:"time" validate:"omitempty,datetime=15:04"`
	EventName       *string               `json:"event_name" validate:"omitempty,max=120"`
	MaxParticipants *int                  `json:"max_participants" validate:"omitempty,min=1,max=500"`
	Description     *string               `json:"description" validate:"omitempty,max=5000"`
	AddDisclaimer   *bool                 `json:"add_disclaimer"`
	DisclaimerText  *string               `json:"disclaimer_text" validate:"omitempty,max=2000"`
	TransportType   *TransportType        `json:"transport_type" validate:"omitempty,oneof=public car none"`
	PublicTransport *PublicTransportPatch `json:"public_transport"`
	CarTransport    *CarTransportPatch    `json:"car_transport"`
}

type PublicTransportPatch struct {
	MeetingPoint *string `json:"meeting_point" validate:"omitempty,max=200"`
	TicketCost   *string `json:"ticket_cost" validate:"omitempty,max=50"`
	Instructions *string `json:"instructions" validate:"omitempty,max=1000"`
}

type CarTransportPatch struct {
	PickupLocation *string `json:"pickup_location" validate:"omitempty,max=200"`
	FuelCost       *string `json:"fuel_cost" validate:"omitempty,max=50"`
	CarDescription *string `json:"car_description" validate:"omitempty,max=1000"`
}

// State is what every draft endpoint returns.
type State struct {
	Draft             Draft `json:"draft"`
	Step              Step  `json:"step"`
	LogicalStep       int   `json:"logical_step"`
	TotalSteps        int   `json:"total_steps"`
	HasUnsavedChanges bool  `json:"has_unsaved_changes"`
}
