package route

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExpert   Difficulty = "expert"
)

// difficultyRank orders difficulties for the highest-difficulty sort.
var difficultyRank = map[Difficulty]int{
	DifficultyEasy:     1,
	DifficultyModerate: 2,
	DifficultyHard:     3,
	DifficultyExpert:   4,
}

// TechnicalGrade is the T1..T6 hiking scale.
type TechnicalGrade string

type Shape string

const (
	ShapeLoop         Shape = "loop"
	ShapeOutAndBack   Shape = "out-and-back"
	ShapePointToPoint Shape = "point-to-point"
)

type Highlight string

type Feature string

type Facility string

type Route struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Location       string         `json:"location"`
	Region         string         `json:"region"`
	Image          string         `json:"image"`
	Difficulty     Difficulty     `json:"difficulty"`
	TechnicalGrade TechnicalGrade `json:"technical_grade"`
	DistanceKm     float64        `json:"distance_km"`
	DurationHours  float64        `json:"duration_hours"`
	ElevationGainM float64        `json:"elevation_gain_m"`
	Shape          Shape          `json:"route_shape"`
	Highlights     []Highlight    `json:"highlights"`
	Features       []Feature      `json:"features"`
	Facilities     []Facility     `json:"facilities"`
	Rating         float64        `json:"rating"`
	ReviewCount    int            `json:"review_count"`
	Description    string         `json:"description"`
	Coordinates    *Coordinates   `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Range is an inclusive [min, max] bound.
type Range [2]float64

func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

type Filters struct {
	Search         string           `json:"search"`
	Difficulty     []Difficulty     `json:"difficulty"`
	TechnicalGrade []TechnicalGrade `json:"technical_grade"`
	DistanceRange  Range            `json:"distance_range"`
	DurationRange  Range            `json:"duration_range"`
	ElevationRange Range            `json:"elevation_range"`
	Highlights     []Highlight      `json:"highlights"`
	Features       []Feature        `json:"features"`
	Facilities     []Facility       `json:"facilities"`
	Shape          []Shape          `json:"route_shape"`
}

var (
	DefaultDistanceRange  = Range{0, 50}
	DefaultDurationRange  = Range{0, 12}
	DefaultElevationRange = Range{0, 3000}
)

func DefaultFilters() Filters {
	return Filters{
		Difficulty:     []Difficulty{},
		TechnicalGrade: []TechnicalGrade{},
		DistanceRange:  DefaultDistanceRange,
		DurationRange:  DefaultDurationRange,
		ElevationRange: DefaultElevationRange,
		Highlights:     []Highlight{},
		Features:       []Feature{},
		Facilities:     []Facility{},
		Shape:          []Shape{},
	}
}

type SortOption string

const (
	SortPopular           SortOption = "popular"
	SortShortestDuration  SortOption = "shortest-duration"
	SortLowestElevation   SortOption = "lowest-elevation"
	SortHighestDifficulty SortOption = "highest-difficulty"
)

// FilterKey names one removable filter dimension.
type FilterKey string

const (
	KeyDifficulty     FilterKey = "difficulty"
	KeyTechnicalGrade FilterKey = "technical_grade"
	KeyHighlights     FilterKey = "highlights"
	KeyFeatures       FilterKey = "features"
	KeyFacilities     FilterKey = "facilities"
	KeyShape          FilterKey = "route_shape"
	KeyDistanceRange  FilterKey = "distance_range"
	KeyDurationRange  FilterKey = "duration_range"
	KeyElevationRange FilterKey = "elevation_range"
)

// Chip is one removable entry in the active-filter bar.
type Chip struct {
	Key   FilterKey `json:"key"`
	Value string    `json:"value"`
	Label string    `json:"label"`
}

type Result struct {
	Routes            []Route    `json:"routes"`
	ActiveFilterCount int        `json:"active_filter_count"`
	Chips             []Chip     `json:"chips"`
	Sort              SortOption `json:"sort"`
}

type RouteDistance struct {
	Route      Route   `json:"route"`
	DistanceKm float64 `json:"distance_km"`
}
