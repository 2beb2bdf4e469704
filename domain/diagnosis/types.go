package diagnosis

// Severity bounds for a reported symptom.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// Risk is the coarse triage level.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Item is one reported symptom with its severity.
type Item struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
}

// Differential is one candidate cause with a display confidence.
type Differential struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Assessment is the triage verdict shown next to the ranking.
type Assessment struct {
	Risk            Risk           `json:"risk"`
	Summary         string         `json:"summary"`
	Differential    []Differential `json:"differential"`
	Recommendations []string       `json:"recommendations"`
	Source          string         `json:"source"`
}

// CatalogMatch is an order-boosted match against a class's known symptoms.
type CatalogMatch struct {
	Disease string  `json:"disease"`
	Score   float64 `json:"score"`
}
