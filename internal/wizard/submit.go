package wizard

import (
	"fmt"
	"strings"

	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
	"github.com/gdpillet/gdpillet-trailmates/internal/event"
	"github.com/gdpillet/gdpillet-trailmates/internal/route"
)

// departure is the flattened transport section of an event row.
type departure struct {
	Transport        string
	Place            string
	MeetingLocation  string
	MeetingTransport string
	TicketPrice      string
	Note             string
}

// flattenTransport maps the draft's transport choice onto event columns.
// Public transport is recorded as train.
func flattenTransport(d Draft) departure {
	if d.TransportType == nil {
		return departure{Transport: event.TransportNone, Place: event.PlaceTBD}
	}
	switch *d.TransportType {
	case TransportPublic:
		pt := d.PublicTransport
		return departure{
			Transport:        event.TransportTrain,
			Place:            orTBD(pt.MeetingPoint),
			MeetingLocation:  pt.MeetingPoint,
			MeetingTransport: event.TransportTrain,
			TicketPrice:      pt.TicketCost,
			Note:             pt.Instructions,
		}
	case TransportCar:
		ct := d.CarTransport
		return departure{
			Transport:        event.TransportCarpool,
			Place:            orTBD(ct.PickupLocation),
			MeetingLocation:  ct.PickupLocation,
			MeetingTransport: event.TransportCarpool,
			TicketPrice:      ct.FuelCost,
			Note:             ct.CarDescription,
		}
	default:
		return departure{Transport: event.TransportNone, Place: event.PlaceTBD}
	}
}

func orTBD(s string) string {
	if strings.TrimSpace(s) == "" {
		return event.PlaceTBD
	}
	return s
}

// eventActivity is the events.activity_type value for a draft activity.
func eventActivity(a ActivityType) string {
	if a == ActivitySkiing {
		return "ski-touring"
	}
	return string(a)
}

// BuildEvent maps a complete draft onto a new event row. Date, time and
// activity must be set. rt is the selected catalog route, if any.
func BuildEvent(d Draft, organizer auth.Organizer, rt *route.Route, defaultCover string) event.Event {
	dep := flattenTransport(d)
	e := event.Event{
		Title:              strings.TrimSpace(d.EventName),
		ActivityType:       eventActivity(*d.ActivityType),
		EventDate:          *d.Date,
		StartTime:          *d.Time,
		CoverImage:         defaultCover,
		OrganizerName:      organizer.Name,
		OrganizerAvatar:    organizer.Avatar,
		DeparturePlace:     dep.Place,
		DepartureTransport: dep.Transport,
		MeetingLocation:    dep.MeetingLocation,
		MeetingTransport:   dep.MeetingTransport,
		TicketPrice:        dep.TicketPrice,
		MeetingNote:        dep.Note,
		ParticipantsCount:  1,
		ParticipantsMax:    d.MaxParticipants,
		ParticipantAvatars: []string{},
		Description:        d.Description,
		IdempotencyKey:     d.IdempotencyKey,
	}
	if dep.MeetingLocation != "" {
		e.MeetingTime = *d.Time
	}
	if organizer.Avatar != "" {
		e.ParticipantAvatars = append(e.ParticipantAvatars, organizer.Avatar)
	}
	if d.AddDisclaimer {
		e.Disclaimer = d.DisclaimerText
	}
	if rt != nil {
		e.RouteID = rt.ID
		e.ActivityDifficulty = string(rt.Difficulty)
		e.Duration = fmt.Sprintf("%gh", rt.DurationHours)
		e.StatsDistance = fmt.Sprintf("%g km", rt.DistanceKm)
		e.StatsElevation = fmt.Sprintf("%g m", rt.ElevationGainM)
		if rt.Image != "" {
			e.CoverImage = rt.Image
		}
		if e.Title == "" {
			e.Title = rt.Name
		}
	}
	return e
}
