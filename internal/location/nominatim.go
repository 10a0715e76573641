package location

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Geocoder interface {
	Reverse(ctx context.Context, c Coordinates) (string, error)
}

// Nominatim reverse geocodes against an OpenStreetMap Nominatim server.
type Nominatim struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
}

func NewNominatim(baseURL string) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "trailmates-api/1.0",
		timeout:   5 * time.Second,
	}
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type nominatimResponse struct {
	Address *nominatimAddress `json:"address"`
}

// Reverse returns "locality, country", just the country, or "" when the
// server knows nothing about the point.
func (n *Nominatim) Reverse(ctx context.Context, c Coordinates) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lng, 'f', -1, 64))
	q.Set("zoom", "10")

	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Get(n.baseURL + "/reverse")
	agent.QueryString(q.Encode())
	agent.UserAgent(n.userAgent)
	agent.Timeout(timeout)

	var resp nominatimResponse
	status, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return "", fmt.Errorf("nominatim reverse: %w", errs[0])
	}
	if status != fiber.StatusOK {
		return "", fmt.Errorf("nominatim reverse: status %d", status)
	}
	return formatAddress(resp.Address), nil
}

func formatAddress(a *nominatimAddress) string {
	if a == nil {
		return ""
	}
	locality := firstNonEmpty(a.City, a.Town, a.Village, a.State)
	if locality == "" {
		return a.Country
	}
	return locality + ", " + a.Country
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
