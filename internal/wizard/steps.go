package wizard

type Step int

const (
	StepActivity Step = iota + 1
	StepRoute
	StepDateTime
	StepDetails
	StepDescription
	StepTransport
	StepReview
)

// A node is visited when its guard holds for the chosen activity.
type node struct {
	step  Step
	guard func(activity *ActivityType) bool
}

func always(*ActivityType) bool { return true }

// An unset activity keeps the route step so the full path is shown.
func routeStep(activity *ActivityType) bool {
	return activity == nil || activity.RouteBased()
}

var flow = []node{
	{StepActivity, always},
	{StepRoute, routeStep},
	{StepDateTime, always},
	{StepDetails, always},
	{StepDescription, always},
	{StepTransport, always},
	{StepReview, always},
}

func (s Step) Valid() bool {
	return s >= StepActivity && s <= StepReview
}

// Path lists the steps visited for activity, in order.
func Path(activity *ActivityType) []Step {
	path := make([]Step, 0, len(flow))
	for _, n := range flow {
		if n.guard(activity) {
			path = append(path, n.step)
		}
	}
	return path
}

// Next stays put until an activity is chosen, and at the final step.
func Next(step Step, activity *ActivityType) Step {
	if activity == nil {
		return step
	}
	for _, s := range Path(activity) {
		if s > step {
			return s
		}
	}
	return step
}

func Previous(step Step, activity *ActivityType) Step {
	if step <= StepActivity {
		return StepActivity
	}
	path := Path(activity)
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] < step {
			return path[i]
		}
	}
	return step
}

func TotalSteps(activity *ActivityType) int {
	return len(Path(activity))
}

// LogicalStep is the 1-based position shown to the user. It is derived from
// the path on every call and never stored.
func LogicalStep(step Step, activity *ActivityType) int {
	path := Path(activity)
	pos := 1
	for _, s := range path {
		if s < step {
			pos++
		}
	}
	if pos > len(path) {
		return len(path)
	}
	return pos
}
