package rank

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// FileImportance scores path against a list of importance regexes in
// order, returning the weight of the first match or 0 if none match. A
// typical table favors entry points and core packages over tests and
// generated code.
func FileImportance(path string, patterns []ImportancePattern) float64 {
	for _, p := range patterns {
		if p.Regex.MatchString(path) {
			return clamp01(p.Weight)
		}
	}
	return 0
}

// ImportancePattern pairs a path regex with the score to emit on match.
type ImportancePattern struct {
	Regex  *regexp.Regexp
	Weight float64
}

// Recency scores a timestamp against now using linear decay to zero at
// maxAge. Timestamps older than maxAge (or in the future) score 0.
func Recency(ts time.Time, now time.Time, maxAge time.Duration) float64 {
	if maxAge <= 0 {
		return 0
	}
	age := now.Sub(ts)
	if age < 0 || age > maxAge {
		return 0
	}
	return clamp01(1 - float64(age)/float64(maxAge))
}

// FuzzyScore is the substring / per-term containment ratio spec.md §4.6
// names: 1.0 on a full substring match, else the fraction of query terms
// present in content.
func FuzzyScore(content, query string) float64 {
	content = strings.ToLower(content)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}
	if strings.Contains(content, query) {
		return 1.0
	}

	terms := strings.Fields(query)
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, t := range terms {
		if strings.Contains(content, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// SemanticScore returns cosine similarity between two embeddings when both
// are present, falling back to token Jaccard similarity over contentA
// versus contentB when no embedding is available.
func SemanticScore(embeddingA, embeddingB []float32, contentA, contentB string) float64 {
	if len(embeddingA) > 0 && len(embeddingB) > 0 && len(embeddingA) == len(embeddingB) {
		var dot, magA, magB float64
		for i := range embeddingA {
			dot += float64(embeddingA[i]) * float64(embeddingB[i])
			magA += float64(embeddingA[i]) * float64(embeddingA[i])
			magB += float64(embeddingB[i]) * float64(embeddingB[i])
		}
		if magA == 0 || magB == 0 {
			return 0
		}
		return clamp01(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
	}
	return clamp01(jaccard(tokenSet(contentA), tokenSet(contentB)))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(s)) {
		set[t] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// NodeKindScores is the static node-kind relevance table astRelevance
// draws from: a declaration-level node (function, class) is more relevant
// to attach to a chunk than a statement-level one.
var NodeKindScores = map[string]float64{
	"function":  0.9,
	"method":    0.9,
	"class":     0.8,
	"interface": 0.7,
	"type":      0.6,
	"struct":    0.8,
}

// AstRelevance is the max of the node-kind table's score for nodeKind and a
// fuzzy match between query and nodeName, or 0 when nodeKind is empty (no
// tree node attached to the chunk).
func AstRelevance(nodeKind, nodeName, query string) float64 {
	if nodeKind == "" {
		return 0
	}
	kindScore := NodeKindScores[nodeKind]
	nameScore := FuzzyScore(nodeName, query)
	if nameScore > kindScore {
		return clamp01(nameScore)
	}
	return clamp01(kindScore)
}
