// Package rank implements the multi-factor ranker spec.md §4.6 describes:
// weighted, clamped factor functions combined into a single score, with
// pluggable normalization. Grounded on the teacher's internal/graph package
// for the extra symbol-graph factor (symbolgraph.go) and on its general
// preference for small, composable functions over deep type hierarchies
// (spec.md §9's "deep inheritance collapses into a small capability set").
package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NormalizationStrategy selects how raw weighted scores become the final
// output score.
type NormalizationStrategy string

const (
	MinMax  NormalizationStrategy = "minMax"
	Softmax NormalizationStrategy = "softmax"
	None    NormalizationStrategy = "none"
)

// Factors holds the built-in named factor values, each already clamped to
// [0,1]. Extra factors ride alongside in the Extra map.
type Factors struct {
	TfIdfScore     float64
	FuzzyScore     float64
	ProximityScore float64
	SemanticScore  float64
	AstRelevance   float64
	Extra          map[string]float64
}

// Weights assigns a [0,1] weight to each factor by name. Names not present
// default to 0. Weights are normalized (divided by their sum) before
// combination, so callers do not need them to sum to 1.
type Weights map[string]float64

// ScoreFunc computes the raw Factors for one item against a query. Every
// field it returns is clamped to [0,1] by Rank regardless of what the
// function itself does, per spec.md §4.6's "the engine enforces this".
type ScoreFunc[T any] func(item T, query string) Factors

// Result is one ranked item: its normalized score, the clamped (unweighted)
// factor values that produced it, and an optional human-readable breakdown.
type Result[T any] struct {
	Item        T
	Score       float64
	Factors     Factors
	Explanation string
}

// Options configures a Rank call.
type Options struct {
	Weights       Weights
	Normalization NormalizationStrategy // default MinMax
	MinScore      float64
	Explain       bool
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFactors(f Factors) Factors {
	out := Factors{
		TfIdfScore:     clamp01(f.TfIdfScore),
		FuzzyScore:     clamp01(f.FuzzyScore),
		ProximityScore: clamp01(f.ProximityScore),
		SemanticScore:  clamp01(f.SemanticScore),
		AstRelevance:   clamp01(f.AstRelevance),
	}
	if len(f.Extra) > 0 {
		out.Extra = make(map[string]float64, len(f.Extra))
		for k, v := range f.Extra {
			out.Extra[k] = clamp01(v)
		}
	}
	return out
}

func namedValues(f Factors) map[string]float64 {
	m := map[string]float64{
		"tfIdfScore":     f.TfIdfScore,
		"fuzzyScore":     f.FuzzyScore,
		"proximityScore": f.ProximityScore,
		"semanticScore":  f.SemanticScore,
		"astRelevance":   f.AstRelevance,
	}
	for k, v := range f.Extra {
		m[k] = v
	}
	return m
}

func weightedSum(values map[string]float64, weights Weights) float64 {
	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	var sum float64
	for name, w := range weights {
		sum += values[name] * (w / weightSum)
	}
	return sum
}

func explain(values map[string]float64, weights Weights) string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if w := weights[name]; w > 0 {
			parts = append(parts, fmt.Sprintf("%s=%.3f(w=%.2f)", name, values[name], w))
		}
	}
	return strings.Join(parts, ", ")
}

// Rank scores every item with scoreFn, combines factors per opts.Weights,
// normalizes per opts.Normalization, drops items below opts.MinScore, and
// returns results sorted by descending score.
func Rank[T any](items []T, query string, scoreFn ScoreFunc[T], opts Options) []Result[T] {
	norm := opts.Normalization
	if norm == "" {
		norm = MinMax
	}

	raw := make([]float64, len(items))
	factors := make([]Factors, len(items))
	for i, item := range items {
		f := clampFactors(scoreFn(item, query))
		factors[i] = f
		raw[i] = weightedSum(namedValues(f), opts.Weights)
	}

	normalized := normalize(raw, norm)

	results := make([]Result[T], 0, len(items))
	for i, item := range items {
		score := normalized[i]
		if score < opts.MinScore {
			continue
		}
		r := Result[T]{Item: item, Score: score, Factors: factors[i]}
		if opts.Explain {
			r.Explanation = explain(namedValues(factors[i]), opts.Weights)
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func normalize(scores []float64, strategy NormalizationStrategy) []float64 {
	out := make([]float64, len(scores))
	copy(out, scores)
	if len(out) == 0 {
		return out
	}

	switch strategy {
	case Softmax:
		max := out[0]
		for _, v := range out {
			if v > max {
				max = v
			}
		}
		var sum float64
		exps := make([]float64, len(out))
		for i, v := range out {
			e := math.Exp(v - max)
			exps[i] = e
			sum += e
		}
		if sum == 0 {
			return out
		}
		for i := range out {
			out[i] = exps[i] / sum
		}
		return out
	case None:
		return out
	default: // MinMax
		min, max := out[0], out[0]
		for _, v := range out {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if max == min {
			for i := range out {
				out[i] = 1.0
			}
			return out
		}
		for i := range out {
			out[i] = (out[i] - min) / (max - min)
		}
		return out
	}
}
