package route

import (
	"context"

	"github.com/gdpillet/gdpillet-trailmates/internal/db"
)

// Catalog is an immutable snapshot of the route table, loaded once at startup.
type Catalog struct {
	routes []Route
	byID   map[string]int
}

func NewCatalog(routes []Route) *Catalog {
	c := &Catalog{
		routes: make([]Route, len(routes)),
		byID:   make(map[string]int, len(routes)),
	}
	copy(c.routes, routes)
	for i, r := range c.routes {
		c.byID[r.ID] = i
	}
	return c
}

// Routes returns a copy; callers may reorder it freely.
func (c *Catalog) Routes() []Route {
	out := make([]Route, len(c.routes))
	copy(out, c.routes)
	return out
}

func (c *Catalog) Get(id string) (Route, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Route{}, false
	}
	return c.routes[i], true
}

func (c *Catalog) Len() int {
	return len(c.routes)
}

type Repository struct {
	db db.Querier
}

func NewRepository(db db.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) LoadCatalog(ctx context.Context) (*Catalog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, location, region, image, difficulty, technical_grade,
		       distance_km, duration_hours, elevation_gain_m, route_shape,
		       highlights, features, facilities, rating, review_count, description,
		       location_point IS NOT NULL,
		       COALESCE(ST_Y(location_point::geometry), 0), COALESCE(ST_X(location_point::geometry), 0)
		FROM routes
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var (
			rt                               Route
			difficulty, grade, shape         string
			highlights, features, facilities []string
			hasPoint                         bool
			lat, lng                         float64
		)
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Location, &rt.Region, &rt.Image, &difficulty, &grade,
			&rt.DistanceKm, &rt.DurationHours, &rt.ElevationGainM, &shape,
			&highlights, &features, &facilities, &rt.Rating, &rt.ReviewCount, &rt.Description,
			&hasPoint, &lat, &lng); err != nil {
			return nil, err
		}
		rt.Difficulty = Difficulty(difficulty)
		rt.TechnicalGrade = TechnicalGrade(grade)
		rt.Shape = Shape(shape)
		rt.Highlights = typed[Highlight](highlights)
		rt.Features = typed[Feature](features)
		rt.Facilities = typed[Facility](facilities)
		if hasPoint {
			rt.Coordinates = &Coordinates{Lat: lat, Lng: lng}
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewCatalog(routes), nil
}

func typed[T ~string](in []string) []T {
	out := make([]T, len(in))
	for i, s := range in {
		out[i] = T(s)
	}
	return out
}
