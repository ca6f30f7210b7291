package edge

import "math"

// Recommendation is the betting call for one prop line.
type Recommendation string

const (
	BetOver  Recommendation = "BET OVER"
	BetUnder Recommendation = "BET UNDER"
	NoBet    Recommendation = "NO BET"
)

// Confidence tiers a recommendation by its true edge.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	// ConfidenceUnset marks rows whose odds were missing or malformed:
	// the direction is still known but the edge, and so the tier, is not.
	ConfidenceUnset Confidence = ""
)

// Params centralizes the thresholds that used to be magic numbers
// scattered across call sites. Loaded from the edge limits YAML file.
type Params struct {
	// IndifferenceBand: predictions within this many shots of the line
	// are NO BET.
	IndifferenceBand float64
	// Edge tiers, in percentage points of true edge.
	HighEdgePct   float64
	MediumEdgePct float64
}

var DefaultParams = Params{
	IndifferenceBand: 0.2,
	HighEdgePct:      10,
	MediumEdgePct:    5,
}

// Result is the full edge-engine output for one (prediction, line) pair.
// Nil pointer fields are undefined, not zero: NO BET rows carry no
// probabilities, and rows with unusable odds carry no implied probability
// or edge.
type Result struct {
	Recommendation Recommendation
	ModelProb      *float64
	ImpliedProb    *float64
	TrueEdge       *float64 // percentage points, model minus implied
	Confidence     Confidence
}

// Classify turns a model prediction and a posted line into a recommendation
// with a probabilistically grounded edge.
//
// Model probability uses a Poisson with rate equal to the point prediction:
// P(X > line) for OVER, P(X < line) with the continuity correction for
// UNDER. True edge is (model − implied) × 100. Odds may be nil (missing or
// malformed upstream); the direction call still stands but the edge and
// confidence tier stay undefined.
func Classify(prediction, line float64, overOdds, underOdds *int, p Params) Result {
	diff := prediction - line

	if math.Abs(diff) < p.IndifferenceBand {
		return Result{Recommendation: NoBet, Confidence: ConfidenceLow}
	}

	var (
		rec          Recommendation
		modelProb    float64
		relevantOdds *int
	)
	if diff > 0 {
		rec = BetOver
		modelProb = OverProbability(prediction, line)
		relevantOdds = overOdds
	} else {
		rec = BetUnder
		modelProb = UnderProbability(prediction, line)
		relevantOdds = underOdds
	}

	res := Result{
		Recommendation: rec,
		ModelProb:      &modelProb,
		Confidence:     ConfidenceUnset,
	}

	if relevantOdds == nil {
		return res
	}

	implied := ImpliedProbability(*relevantOdds)
	trueEdge := (modelProb - implied) * 100

	res.ImpliedProb = &implied
	res.TrueEdge = &trueEdge
	res.Confidence = p.Tier(trueEdge)
	return res
}

// Tier maps a true edge (percentage points) to its confidence tier.
func (p Params) Tier(trueEdgePct float64) Confidence {
	switch {
	case trueEdgePct > p.HighEdgePct:
		return ConfidenceHigh
	case trueEdgePct > p.MediumEdgePct:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
