package location

type Coordinates struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// UserLocation is what gets stored per user. Address is nil when reverse
// geocoding found nothing or failed.
type UserLocation struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     *string     `json:"address"`
}

type FailureKind string

const (
	PermissionDenied    FailureKind = "permission-denied"
	PositionUnavailable FailureKind = "position-unavailable"
	Timeout             FailureKind = "timeout"
	Unsupported         FailureKind = "unsupported"
)

// Failure is a client geolocation error translated for display.
type Failure struct {
	Kind             FailureKind `json:"kind"`
	Message          string      `json:"message"`
	PermissionStatus string      `json:"permission_status"`
}
