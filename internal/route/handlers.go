package route

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
)

type searchRequest struct {
	Filters *Filters `json:"filters"`
	Sort    string   `json:"sort"`
}

type removeRequest struct {
	Filters *Filters  `json:"filters"`
	Key     FilterKey `json:"key"`
	Value   string    `json:"value"`
}

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		f, err := filtersFromQuery(c)
		if err != nil {
			return err
		}
		return c.JSON(svc.Search(f, ParseSort(c.Query("sort"))))
	})

	r.Post("/search", func(c *fiber.Ctx) error {
		// omitted fields keep their defaults
		f := DefaultFilters()
		req := searchRequest{Filters: &f}
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("invalid payload")
		}
		if req.Filters == nil {
			req.Filters = &f
		}
		return c.JSON(svc.Search(*req.Filters, ParseSort(req.Sort)))
	})

	r.Get("/filters/default", func(c *fiber.Ctx) error {
		return c.JSON(DefaultFilters())
	})

	r.Post("/filters/remove", func(c *fiber.Ctx) error {
		f := DefaultFilters()
		req := removeRequest{Filters: &f}
		if err := c.BodyParser(&req); err != nil || req.Filters == nil || req.Key == "" {
			return apperror.Validation("filters and key required")
		}
		next := RemoveFilter(Normalize(*req.Filters), req.Key, req.Value)
		return c.JSON(fiber.Map{
			"filters":             next,
			"active_filter_count": ActiveFilterCount(next),
			"chips":               Chips(next),
		})
	})

	r.Get("/nearby", func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return apperror.Validation("lat and lng required")
		}
		radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
		if radius <= 0 {
			radius = 25
		}
		return c.JSON(svc.Nearby(lat, lng, radius))
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		rt, err := svc.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(rt)
	})
}

func filtersFromQuery(c *fiber.Ctx) (Filters, error) {
	f := DefaultFilters()
	f.Search = c.Query("search")
	f.Difficulty = typed[Difficulty](list(c.Query("difficulty")))
	f.TechnicalGrade = typed[TechnicalGrade](list(c.Query("technical")))
	f.Highlights = typed[Highlight](list(c.Query("highlights")))
	f.Features = typed[Feature](list(c.Query("features")))
	f.Facilities = typed[Facility](list(c.Query("facilities")))
	f.Shape = typed[Shape](list(c.Query("shape")))

	var err error
	if f.DistanceRange, err = parseRange(c.Query("distance"), DefaultDistanceRange); err != nil {
		return Filters{}, apperror.Validation("distance must be min,max")
	}
	if f.DurationRange, err = parseRange(c.Query("duration"), DefaultDurationRange); err != nil {
		return Filters{}, apperror.Validation("duration must be min,max")
	}
	if f.ElevationRange, err = parseRange(c.Query("elevation"), DefaultElevationRange); err != nil {
		return Filters{}, apperror.Validation("elevation must be min,max")
	}
	return f, nil
}

func list(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseRange(raw string, fallback Range) (Range, error) {
	if raw == "" {
		return fallback, nil
	}
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return Range{}, strconv.ErrSyntax
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Range{}, err
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Range{}, err
	}
	return Range{lo, hi}, nil
}
