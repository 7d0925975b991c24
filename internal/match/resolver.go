package match

import (
	"math"

	"symbol-spotter/internal/symbol"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// DefaultSimilarityThreshold is the score below which a best match counts.
const DefaultSimilarityThreshold = 1.0

// Comparer scores two descriptors; lower is more similar. NaN means the
// pair could not be compared.
type Comparer interface {
	Score(a, b symbol.Descriptor) float64
}

// Result is the outcome of one resolution.
type Result struct {
	// Index is the missing reference position, valid only when Resolved.
	Index    int
	Resolved bool
	// Reason describes how the decision (or non-decision) was reached.
	Reason string
}

// Letter returns the option letter for a resolved result ("A".."E"), or ""
// when there is no decision.
func (r Result) Letter() string {
	if !r.Resolved {
		return ""
	}
	return string(rune('A' + r.Index))
}

func noDecision(reason string) Result {
	return Result{Index: -1, Reason: reason}
}

// Resolver finds the reference glyph that has no counterpart in the question.
type Resolver struct {
	comparer  Comparer
	threshold float64
	logger    *zap.Logger
}

// NewResolver creates a resolver. A nil logger disables logging.
func NewResolver(comparer Comparer, threshold float64, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{comparer: comparer, threshold: threshold, logger: logger.Named("resolver")}
}

// Resolve compares every question glyph against every reference glyph and
// returns the reference index left unmatched.
//
// When several indices stay unmatched, the one with the smallest score
// against any question glyph is taken as a near-miss and dropped; the lowest
// remaining index is the answer.
func (r *Resolver) Resolve(reference, question []symbol.Descriptor) Result {
	if len(reference) == 0 || len(question) == 0 {
		return noDecision("empty input")
	}

	// Recorded scores per reference index, NaN excluded.
	recorded := make(map[int][]float64, len(reference))
	matched := make(map[int]bool, len(reference))

	for qi, q := range question {
		best, bestScore := -1, math.Inf(1)
		for ri, ref := range reference {
			s := r.comparer.Score(q, ref)
			if math.IsNaN(s) {
				continue
			}
			recorded[ri] = append(recorded[ri], s)
			if s < bestScore {
				best, bestScore = ri, s
			}
		}
		r.logger.Debug("best match",
			zap.Int("question", qi),
			zap.Int("reference", best),
			zap.Float64("score", bestScore))
		if best >= 0 && bestScore < r.threshold {
			matched[best] = true
		}
	}

	var missing []int
	for i := range reference {
		if !matched[i] {
			missing = append(missing, i)
		}
	}

	switch len(missing) {
	case 0:
		return noDecision("every reference matched")
	case 1:
		return Result{Index: missing[0], Resolved: true, Reason: "single missing"}
	}

	r.logger.Debug("multiple missing", zap.Ints("indices", missing))

	nearMiss, nearScore := -1, math.Inf(1)
	for _, idx := range missing {
		scores := recorded[idx]
		if len(scores) == 0 {
			continue
		}
		if m := floats.Min(scores); m < nearScore {
			nearMiss, nearScore = idx, m
		}
	}
	if nearMiss < 0 {
		return Result{Index: missing[0], Resolved: true, Reason: "fallback without scores"}
	}

	remaining := make([]int, 0, len(missing)-1)
	for _, idx := range missing {
		if idx != nearMiss {
			remaining = append(remaining, idx)
		}
	}
	r.logger.Debug("tie-break",
		zap.Int("near_miss", nearMiss),
		zap.Float64("near_score", nearScore),
		zap.Int("chosen", remaining[0]))
	return Result{Index: remaining[0], Resolved: true, Reason: "tie-break"}
}
