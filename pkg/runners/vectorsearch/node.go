// Package vectorsearch provides the retrieval node runner that scores a
// document corpus against a query.
package vectorsearch

import (
	"context"
	"sort"
	"strings"
)

const defaultTopK = 10

// VectorSearchRunner retrieves the best-matching documents for a query from
// the corpus configured on the node. Scoring is deterministic token overlap,
// so runs are reproducible without an external vector store.
type VectorSearchRunner struct {
	id         string
	collection string
	corpus     []document
}

type document struct {
	ID      string
	Content string
}

// NewVectorSearchRunner creates a new vector search runner from the node's
// static configuration.
func NewVectorSearchRunner(id string, config map[string]any) (*VectorSearchRunner, error) {
	collection, _ := config["collection"].(string)

	corpus := make([]document, 0)

	if docs, ok := config["documents"].([]any); ok {
		for _, raw := range docs {
			switch value := raw.(type) {
			case string:
				corpus = append(corpus, document{ID: value, Content: value})
			case map[string]any:
				docID, _ := value["id"].(string)
				content, _ := value["content"].(string)
				corpus = append(corpus, document{ID: docID, Content: content})
			}
		}
	}

	return &VectorSearchRunner{
		id:         id,
		collection: collection,
		corpus:     corpus,
	}, nil
}

// ID returns the node instance ID.
func (r *VectorSearchRunner) ID() string {
	return r.id
}

// Type returns the node type.
func (r *VectorSearchRunner) Type() string {
	return "vector_search"
}

// Run scores every corpus document against the query and returns the top_k
// results above the threshold, ordered by descending score.
func (r *VectorSearchRunner) Run(_ context.Context, input map[string]any, _ map[string]any) (map[string]any, map[string]any, error) {
	query, _ := input["query"].(string)

	topK := defaultTopK
	if value, ok := intValue(input["top_k"]); ok && value > 0 {
		topK = value
	}

	threshold := 0.0
	if value, ok := floatValue(input["threshold"]); ok {
		threshold = value
	}

	queryTokens := tokenize(query)
	results := make([]map[string]any, 0, len(r.corpus))

	for _, doc := range r.corpus {
		score := overlapScore(queryTokens, tokenize(doc.Content))
		if score < threshold {
			continue
		}

		results = append(results, map[string]any{
			"id":      doc.ID,
			"content": doc.Content,
			"score":   score,
			"source":  r.collection,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i]["score"].(float64) > results[j]["score"].(float64)
	})

	if len(results) > topK {
		results = results[:topK]
	}

	documents := make([]any, len(results))
	for i, result := range results {
		documents[i] = result
	}

	return map[string]any{
		"documents": documents,
		"count":     len(documents),
	}, nil, nil
}

func intValue(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func floatValue(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})

	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Trim(field, ".,;:!?\"'()[]")
		if token != "" {
			tokens[token] = struct{}{}
		}
	}

	return tokens
}

// overlapScore is the fraction of query tokens present in the document.
func overlapScore(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}

	matches := 0

	for token := range query {
		if _, ok := doc[token]; ok {
			matches++
		}
	}

	return float64(matches) / float64(len(query))
}
