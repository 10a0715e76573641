package route

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdpillet/gdpillet-trailmates/internal/shared/geo"
)

// Compute narrows the catalog with every active filter and orders the survivors.
// The input slice is never modified.
func Compute(routes []Route, f Filters, sortBy SortOption) []Route {
	search := strings.ToLower(f.Search)

	result := make([]Route, 0, len(routes))
	for _, r := range routes {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if len(f.Difficulty) > 0 && !contains(f.Difficulty, r.Difficulty) {
			continue
		}
		if len(f.TechnicalGrade) > 0 && !contains(f.TechnicalGrade, r.TechnicalGrade) {
			continue
		}
		// ranges always apply, even at their default span
		if !f.DistanceRange.Contains(r.DistanceKm) ||
			!f.DurationRange.Contains(r.DurationHours) ||
			!f.ElevationRange.Contains(r.ElevationGainM) {
			continue
		}
		if len(f.Highlights) > 0 && !overlaps(f.Highlights, r.Highlights) {
			continue
		}
		if len(f.Features) > 0 && !overlaps(f.Features, r.Features) {
			continue
		}
		if len(f.Facilities) > 0 && !overlaps(f.Facilities, r.Facilities) {
			continue
		}
		if len(f.Shape) > 0 && !contains(f.Shape, r.Shape) {
			continue
		}
		result = append(result, r)
	}

	sortRoutes(result, sortBy)
	return result
}

func matchesSearch(r Route, lowered string) bool {
	return strings.Contains(strings.ToLower(r.Name), lowered) ||
		strings.Contains(strings.ToLower(r.Location), lowered) ||
		strings.Contains(strings.ToLower(r.Region), lowered)
}

func sortRoutes(routes []Route, sortBy SortOption) {
	var less func(a, b Route) bool
	switch sortBy {
	case SortShortestDuration:
		less = func(a, b Route) bool { return a.DurationHours < b.DurationHours }
	case SortLowestElevation:
		less = func(a, b Route) bool { return a.ElevationGainM < b.ElevationGainM }
	case SortHighestDifficulty:
		less = func(a, b Route) bool { return difficultyRank[a.Difficulty] > difficultyRank[b.Difficulty] }
	default:
		less = func(a, b Route) bool { return a.ReviewCount > b.ReviewCount }
	}
	sort.SliceStable(routes, func(i, j int) bool { return less(routes[i], routes[j]) })
}

// ParseSort maps an incoming sort key, falling back to popular.
func ParseSort(s string) SortOption {
	switch opt := SortOption(s); opt {
	case SortPopular, SortShortestDuration, SortLowestElevation, SortHighestDifficulty:
		return opt
	default:
		return SortPopular
	}
}

// ActiveFilterCount counts selected set values plus every range moved off its default.
func ActiveFilterCount(f Filters) int {
	count := len(f.Difficulty) + len(f.TechnicalGrade) + len(f.Highlights) +
		len(f.Features) + len(f.Facilities) + len(f.Shape)
	if f.DistanceRange != DefaultDistanceRange {
		count++
	}
	if f.DurationRange != DefaultDurationRange {
		count++
	}
	if f.ElevationRange != DefaultElevationRange {
		count++
	}
	return count
}

// RemoveFilter resets a range key or drops one value from a set key.
func RemoveFilter(f Filters, key FilterKey, value string) Filters {
	switch key {
	case KeyDistanceRange:
		f.DistanceRange = DefaultDistanceRange
	case KeyDurationRange:
		f.DurationRange = DefaultDurationRange
	case KeyElevationRange:
		f.ElevationRange = DefaultElevationRange
	case KeyDifficulty:
		f.Difficulty = without(f.Difficulty, value)
	case KeyTechnicalGrade:
		f.TechnicalGrade = without(f.TechnicalGrade, value)
	case KeyHighlights:
		f.Highlights = without(f.Highlights, value)
	case KeyFeatures:
		f.Features = without(f.Features, value)
	case KeyFacilities:
		f.Facilities = without(f.Facilities, value)
	case KeyShape:
		f.Shape = without(f.Shape, value)
	}
	return f
}

// ClearFilters is the clear-all action.
func ClearFilters() Filters {
	return DefaultFilters()
}

// Normalize deduplicates set values. Search text and ranges pass through as
// given: an inverted range matches nothing.
func Normalize(f Filters) Filters {
	f.Difficulty = dedupe(f.Difficulty)
	f.TechnicalGrade = dedupe(f.TechnicalGrade)
	f.Highlights = dedupe(f.Highlights)
	f.Features = dedupe(f.Features)
	f.Facilities = dedupe(f.Facilities)
	f.Shape = dedupe(f.Shape)
	return f
}

var chipLabels = map[string]string{
	"easy":             "Easy",
	"moderate":         "Moderate",
	"hard":             "Hard",
	"expert":           "Expert",
	"loop":             "Loop",
	"out-and-back":     "Out & Back",
	"point-to-point":   "Point to Point",
	"lakes":            "Lakes",
	"rivers":           "Rivers",
	"waterfalls":       "Waterfalls",
	"coastline":        "Coastline",
	"ruins":            "Ruins",
	"historical-sites": "Historical Sites",
	"via-ferrata":      "Via Ferrata",
	"climbing":         "Climbing",
	"canyoning":        "Canyoning",
	"ridges":           "Ridges",
	"mountain-passes":  "Mountain Passes",
	"avoid-main-roads": "Avoid Main Roads",
	"restaurants":      "Restaurants",
	"mountain-huts":    "Mountain Huts",
}

// Chips lists the active filters in display order: sets first, then moved ranges.
func Chips(f Filters) []Chip {
	chips := []Chip{}
	chips = appendSetChips(chips, KeyDifficulty, f.Difficulty)
	chips = appendSetChips(chips, KeyTechnicalGrade, f.TechnicalGrade)
	chips = appendSetChips(chips, KeyHighlights, f.Highlights)
	chips = appendSetChips(chips, KeyFeatures, f.Features)
	chips = appendSetChips(chips, KeyFacilities, f.Facilities)
	chips = appendSetChips(chips, KeyShape, f.Shape)

	if f.DistanceRange != DefaultDistanceRange {
		chips = append(chips, rangeChip(KeyDistanceRange, f.DistanceRange, "km"))
	}
	if f.DurationRange != DefaultDurationRange {
		chips = append(chips, rangeChip(KeyDurationRange, f.DurationRange, "hrs"))
	}
	if f.ElevationRange != DefaultElevationRange {
		chips = append(chips, rangeChip(KeyElevationRange, f.ElevationRange, "m"))
	}
	return chips
}

// Nearby returns routes with coordinates inside radiusKm of the point, nearest first.
func Nearby(routes []Route, lat, lng, radiusKm float64) []RouteDistance {
	out := []RouteDistance{}
	for _, r := range routes {
		if r.Coordinates == nil {
			continue
		}
		d := geo.HaversineKm(lat, lng, r.Coordinates.Lat, r.Coordinates.Lng)
		if d <= radiusKm {
			out = append(out, RouteDistance{Route: r, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func appendSetChips[T ~string](chips []Chip, key FilterKey, values []T) []Chip {
	for _, v := range values {
		label, ok := chipLabels[string(v)]
		if !ok {
			label = strings.ToUpper(string(v))
		}
		chips = append(chips, Chip{Key: key, Value: string(v), Label: label})
	}
	return chips
}

func rangeChip(key FilterKey, r Range, unit string) Chip {
	return Chip{Key: key, Value: "range", Label: fmt.Sprintf("%g-%g %s", r[0], r[1], unit)}
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func overlaps[T comparable](wanted, have []T) bool {
	for _, w := range wanted {
		if contains(have, w) {
			return true
		}
	}
	return false
}

func without[T ~string](set []T, value string) []T {
	out := make([]T, 0, len(set))
	for _, s := range set {
		if string(s) != value {
			out = append(out, s)
		}
	}
	return out
}

func dedupe[T comparable](set []T) []T {
	out := make([]T, 0, len(set))
	for _, s := range set {
		if !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
