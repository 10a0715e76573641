package location

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
)

func TestLocationHandlers(t *testing.T) {
	svc, _ := newService(t, fakeGeocoder{addr: "Chamonix, France"})
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler(nil)})
	RegisterRoutes(app.Group("/profile"), svc, func(c *fiber.Ctx) error {
		c.Locals(auth.LocalsUserID, "user-1")
		return c.Next()
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/location", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v", err)
	}
	var empty struct {
		Location *UserLocation `json:"location"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&empty)
	if empty.Location != nil {
		t.Fatalf("expected no location yet")
	}

	req := httptest.NewRequest(http.MethodPut, "/profile/location", bytes.NewReader([]byte(`{"lat":45.92,"lng":6.87}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("put status: %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/profile/location", bytes.NewReader([]byte(`{"lat":123,"lng":6.87}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/profile/location", nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected no content")
	}

	req = httptest.NewRequest(http.MethodPost, "/profile/location/error", bytes.NewReader([]byte(`{"code":1}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	var failure Failure
	_ = json.NewDecoder(resp.Body).Decode(&failure)
	if failure.Kind != PermissionDenied {
		t.Fatalf("unexpected failure %+v", failure)
	}
}
