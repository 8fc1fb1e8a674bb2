package strategy

// RiskBucket classifies the magnitude of a correlation between two strategies.
type RiskBucket string

const (
	RiskLow    RiskBucket = "low"
	RiskMedium RiskBucket = "medium"
	RiskHigh   RiskBucket = "high"
)

// Bucket thresholds. Each bound belongs to the higher bucket.
const (
	MediumRiskThreshold = 0.3
	HighRiskThreshold   = 0.7
)

// ClassifyCorrelation buckets a correlation magnitude. The caller passes
// |r|; a negative value is classified as low.
func ClassifyCorrelation(abs float64) RiskBucket {
	switch {
	case abs < MediumRiskThreshold:
		return RiskLow
	case abs < HighRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// CorrelationPair is one entry of a pairwise correlation analysis. It is
// always derived, never stored.
type CorrelationPair struct {
	StrategyA   string     `json:"strategyA"`
	StrategyB   string     `json:"strategyB"`
	Correlation float64    `json:"correlation"`
	Risk        RiskBucket `json:"risk"`
}
