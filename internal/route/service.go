package route

import (
	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/metrics"
)

type Service struct {
	catalog *Catalog
	metrics *metrics.Metrics
}

func NewService(catalog *Catalog, m *metrics.Metrics) *Service {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Service{catalog: catalog, metrics: m}
}

func (s *Service) Search(f Filters, sortBy SortOption) Result {
	s.metrics.RouteSearch()
	f = Normalize(f)
	return Result{
		Routes:            Compute(s.catalog.Routes(), f, sortBy),
		ActiveFilterCount: ActiveFilterCount(f),
		Chips:             Chips(f),
		Sort:              sortBy,
	}
}

func (s *Service) Get(id string) (Route, error) {
	r, ok := s.catalog.Get(id)
	if !ok {
		return Route{}, apperror.Clone(apperror.ErrNotFound, "route not found")
	}
	return r, nil
}

// Lookup satisfies the wizard's route resolver.
func (s *Service) Lookup(id string) (Route, bool) {
	return s.catalog.Get(id)
}

func (s *Service) Nearby(lat, lng, radiusKm float64) []RouteDistance {
	return Nearby(s.catalog.Routes(), lat, lng, radiusKm)
}
