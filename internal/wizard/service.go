package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
	"github.com/gdpillet/gdpillet-trailmates/internal/event"
	"github.com/gdpillet/gdpillet-trailmates/internal/kv"
	"github.com/gdpillet/gdpillet-trailmates/internal/metrics"
	"github.com/gdpillet/gdpillet-trailmates/internal/route"
	"github.com/gdpillet/gdpillet-trailmates/internal/stream"
)

const (
	StorageKey = "create-event-draft"

	DefaultMaxParticipants = 10
	DefaultTime            = "09:00"
)

type EventCreator interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
}

type RouteResolver interface {
	Lookup(id string) (route.Route, bool)
}

type Service struct {
	store        kv.Store
	events       EventCreator
	routes       RouteResolver
	publisher    stream.Publisher
	metrics      *metrics.Metrics
	log          *zap.Logger
	validate     *validator.Validate
	defaultCover string
	now          func() time.Time
}

func NewService(store kv.Store, events EventCreator, routes RouteResolver, publisher stream.Publisher, m *metrics.Metrics, log *zap.Logger, defaultCover string) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:        store,
		events:       events,
		routes:       routes,
		publisher:    publisher,
		metrics:      m,
		log:          log,
		validate:     validator.New(),
		defaultCover: defaultCover,
		now:          time.Now,
	}
}

// Defaults is a fresh draft: next Saturday at 09:00 for ten people.
func (s *Service) Defaults() Draft {
	date := nextSaturday(s.now())
	t := DefaultTime
	return Draft{
		Date:            &date,
		Time:            &t,
		MaxParticipants: DefaultMaxParticipants,
		IdempotencyKey:  uuid.NewString(),
	}
}

// HasUnsavedChanges reports whether closing would lose user input.
func HasUnsavedChanges(d Draft) bool {
	return d.ActivityType != nil ||
		d.RouteID != nil ||
		d.EventName != "" ||
		d.Description != "" ||
		d.TransportType != nil ||
		d.MaxParticipants != DefaultMaxParticipants
}

// Open returns the user's stored draft merged over defaults. A stored value
// that cannot be decoded is deleted and the defaults are returned.
func (s *Service) Open(ctx context.Context, userID string) (State, error) {
	d, step, err := s.load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return stateOf(d, step), nil
}

func (s *Service) Update(ctx context.Context, userID string, p Patch) (State, error) {
	if err := s.validate.Struct(p); err != nil {
		return State{}, apperror.Wrap(err, apperror.ErrValidation.Code, apperror.ErrValidation.Status, validationMessage(err))
	}
	d, step, err := s.load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	if err := s.apply(&d, p); err != nil {
		return State{}, err
	}
	if err := s.save(ctx, userID, d, step); err != nil {
		return State{}, err
	}
	return stateOf(d, step), nil
}

func (s *Service) Next(ctx context.Context, userID string) (State, error) {
	return s.move(ctx, userID, Next)
}

func (s *Service) Previous(ctx context.Context, userID string) (State, error) {
	return s.move(ctx, userID, Previous)
}

func (s *Service) move(ctx context.Context, userID string, to func(Step, *ActivityType) Step) (State, error) {
	d, step, err := s.load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	step = to(step, d.ActivityType)
	if err := s.save(ctx, userID, d, step); err != nil {
		return State{}, err
	}
	return stateOf(d, step), nil
}

// Discard resets the draft and removes it from storage.
func (s *Service) Discard(ctx context.Context, userID string) (State, error) {
	if err := s.store.Delete(ctx, kv.Key(StorageKey, userID)); err != nil {
		return State{}, fmt.Errorf("delete draft: %w", err)
	}
	s.notify(userID, "draft.discarded", nil)
	return stateOf(s.Defaults(), StepActivity), nil
}

// Close discards the draft. Unsaved input is only thrown away when confirm is
// set; otherwise ErrUnsavedChanges is returned and nothing changes.
func (s *Service) Close(ctx context.Context, userID string, confirm bool) (State, error) {
	d, step, err := s.load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	if HasUnsavedChanges(d) && !confirm {
		return stateOf(d, step), apperror.ErrUnsavedChanges
	}
	return s.Discard(ctx, userID)
}

// Submit turns the draft into an event. The draft survives any failure so the
// user can retry; the idempotency key makes the retry safe.
func (s *Service) Submit(ctx context.Context, userID string, organizer auth.Organizer) (event.Event, error) {
	d, step, err := s.load(ctx, userID)
	if err != nil {
		return event.Event{}, err
	}
	if step != StepReview {
		s.metrics.EventSubmission("rejected")
		return event.Event{}, apperror.Validation("review the event before submitting")
	}
	if d.Date == nil || d.Time == nil || d.ActivityType == nil {
		s.metrics.EventSubmission("rejected")
		return event.Event{}, apperror.Validation("date, time and activity are required")
	}

	var rt *route.Route
	if d.RouteID != nil && d.ActivityType.RouteBased() && s.routes != nil {
		if r, ok := s.routes.Lookup(*d.RouteID); ok {
			rt = &r
		}
	}

	created, err := s.events.Create(ctx, BuildEvent(d, organizer, rt, s.defaultCover))
	if err != nil {
		s.metrics.EventSubmission("failed")
		s.log.Error("submit event", zap.String("user_id", userID), zap.Error(err))
		return event.Event{}, err
	}
	s.metrics.EventSubmission("created")

	if err := s.store.Delete(ctx, kv.Key(StorageKey, userID)); err != nil {
		s.log.Warn("clear submitted draft", zap.String("user_id", userID), zap.Error(err))
	}
	s.notify(userID, "draft.submitted", map[string]string{"event_id": created.ID})
	if s.publisher != nil {
		s.publisher.Publish(stream.TopicEvents, stream.Message{Type: "event.created", Data: created})
	}
	return created, nil
}

func (s *Service) load(ctx context.Context, userID string) (Draft, Step, error) {
	key := kv.Key(StorageKey, userID)
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return Draft{}, 0, fmt.Errorf("load draft: %w", err)
	}
	if !found {
		return s.Defaults(), StepActivity, nil
	}

	stored := storedDraft{Draft: s.Defaults(), CurrentStep: StepActivity}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Warn("discarding unreadable draft", zap.String("user_id", userID), zap.Error(err))
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("delete unreadable draft", zap.String("user_id", userID), zap.Error(err))
		}
		return s.Defaults(), StepActivity, nil
	}
	if stored.Date != nil {
		civil := civilDate(*stored.Date)
		stored.Date = &civil
	}
	if !stored.CurrentStep.Valid() {
		stored.CurrentStep = StepActivity
	}
	if stored.IdempotencyKey == "" {
		stored.IdempotencyKey = uuid.NewString()
	}
	return stored.Draft, stored.CurrentStep, nil
}

func (s *Service) save(ctx context.Context, userID string, d Draft, step Step) error {
	raw, err := json.Marshal(storedDraft{Draft: d, CurrentStep: step})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	err = s.store.Set(ctx, kv.Key(StorageKey, userID), string(raw))
	s.metrics.DraftWrite(err == nil)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	s.notify(userID, "draft.updated", map[string]int{"step": int(step)})
	return nil
}

func (s *Service) notify(userID, kind string, data any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(stream.DraftTopic(userID), stream.Message{Type: kind, Data: data})
}

func (s *Service) apply(d *Draft, p Patch) error {
	if p.ActivityType != nil {
		a := *p.ActivityType
		d.ActivityType = &a
	}
	if p.RouteID != nil {
		id := strings.TrimSpace(*p.RouteID)
		switch {
		case id == "":
			d.RouteID = nil
		case s.routes != nil:
			if _, ok := s.routes.Lookup(id); !ok {
				return apperror.Validation("unknown route " + id)
			}
			d.RouteID = &id
		default:
			d.RouteID = &id
		}
	}
	if p.Date != nil {
		date, err := parseDate(*p.Date)
		if err != nil {
			return apperror.Validation("date must be YYYY-MM-DD or RFC 3339")
		}
		d.Date = date
	}
	if p.Time != nil {
		t := *p.Time
		d.Time = &t
	}
	if p.EventName != nil {
		d.EventName = *p.EventName
	}
	if p.MaxParticipants != nil {
		d.MaxParticipants = *p.MaxParticipants
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.AddDisclaimer != nil {
		d.AddDisclaimer = *p.AddDisclaimer
	}
	if p.DisclaimerText != nil {
		d.DisclaimerText = *p.DisclaimerText
	}
	if p.TransportType != nil {
		t := *p.TransportType
		d.TransportType = &t
	}
	if pt := p.PublicTransport; pt != nil {
		setIf(&d.PublicTransport.MeetingPoint, pt.MeetingPoint)
		setIf(&d.PublicTransport.TicketCost, pt.TicketCost)
		setIf(&d.PublicTransport.Instructions, pt.Instructions)
	}
	if ct := p.CarTransport; ct != nil {
		setIf(&d.CarTransport.PickupLocation, ct.PickupLocation)
		setIf(&d.CarTransport.FuelCost, ct.FuelCost)
		setIf(&d.CarTransport.CarDescription, ct.CarDescription)
	}
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func stateOf(d Draft, step Step) State {
	return State{
		Draft:             d,
		Step:              step,
		LogicalStep:       LogicalStep(step, d.ActivityType),
		TotalSteps:        TotalSteps(d.ActivityType),
		HasUnsavedChanges: HasUnsavedChanges(d),
	}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp; "" clears.
func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	civil := civilDate(t)
	return &civil, nil
}

// civilDate keeps the calendar day of t as midnight UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// nextSaturday is the first Saturday strictly after now's calendar day.
func nextSaturday(now time.Time) time.Time {
	today := civilDate(now)
	days := (int(time.Saturday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperror.ErrValidation.Message
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "invalid " + strings.Join(fields, ", ")
}
