package shape

// Label is the shape class assigned to an object.
type Label string

const (
	Round     Label = "Round"
	Elongated Label = "Elongated"
	Other     Label = "Other"
)

// Classification thresholds. Both comparisons are strict.
const (
	RoundMetricThreshold           = 0.8
	ElongatedEccentricityThreshold = 0.85
)

// Rule pairs a predicate with the label it assigns.
type Rule struct {
	Label Label
	Match func(metric, eccentricity float64) bool
}

// Rules is evaluated in order and the first matching rule wins. The metric
// rule comes first, so a round object is never reported as elongated.
var Rules = []Rule{
	{
		Label: Round,
		Match: func(metric, _ float64) bool { return metric > RoundMetricThreshold },
	},
	{
		Label: Elongated,
		Match: func(_, eccentricity float64) bool { return eccentricity > ElongatedEccentricityThreshold },
	},
}

// Classify returns the label of the first rule matching metric and
// eccentricity, or Other when none does.
func Classify(metric, eccentricity float64) Label {
	for _, r := range Rules {
		if r.Match(metric, eccentricity) {
			return r.Label
		}
	}
	return Other
}
