// Package location keeps the last known position of each user together with
// a human readable place name.
package location

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/kv"
)

const StorageKey = "trailmates_user_location"

// Geolocation error codes as reported by browsers.
const (
	codePermissionDenied    = 1
	codePositionUnavailable = 2
	codeTimeout             = 3
)

type Service struct {
	store    kv.Store
	geocoder Geocoder
	log      *zap.Logger
	validate *validator.Validate
}

func NewService(store kv.Store, geocoder Geocoder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, geocoder: geocoder, log: log, validate: validator.New()}
}

// Update stores c for the user. A failed lookup leaves the address empty
// instead of failing the request.
func (s *Service) Update(ctx context.Context, userID string, c Coordinates) (UserLocation, error) {
	if err := s.validate.Struct(c); err != nil {
		return UserLocation{}, apperror.Validation("coordinates out of range")
	}

	loc := UserLocation{Coordinates: c}
	if s.geocoder != nil {
		addr, err := s.geocoder.Reverse(ctx, c)
		if err != nil {
			s.log.Warn("reverse geocoding failed", zap.Float64("lat", c.Lat), zap.Float64("lng", c.Lng), zap.Error(err))
		} else if addr != "" {
			loc.Address = &addr
		}
	}

	raw, err := json.Marshal(loc)
	if err != nil {
		return UserLocation{}, err
	}
	if err := s.store.Set(ctx, kv.Key(StorageKey, userID), string(raw)); err != nil {
		return UserLocation{}, fmt.Errorf("save location: %w", err)
	}
	return loc, nil
}

// Get returns nil when nothing usable is stored.
func (s *Service) Get(ctx context.Context, userID string) (*UserLocation, error) {
	raw, found, err := s.store.Get(ctx, kv.Key(StorageKey, userID))
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	if !found {
		return nil, nil
	}
	var loc UserLocation
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		s.log.Warn("unreadable stored location", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return &loc, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, kv.Key(StorageKey, userID))
}

// Report translates a client geolocation error code.
func Report(code int) Failure {
	switch code {
	case codePermissionDenied:
		return Failure{
			Kind:             PermissionDenied,
			Message:          "Location access was denied. Please enable it in your browser settings.",
			PermissionStatus: "denied",
		}
	case codePositionUnavailable:
		return Failure{
			Kind:             PositionUnavailable,
			Message:          "Location information is unavailable",
			PermissionStatus: "prompt",
		}
	case codeTimeout:
		return Failure{
			Kind:             Timeout,
			Message:          "Location request timed out. Please try again.",
			PermissionStatus: "prompt",
		}
	default:
		return Failure{
			Kind:             Unsupported,
			Message:          "Geolocation is not supported by your browser",
			PermissionStatus: "unavailable",
		}
	}
}
