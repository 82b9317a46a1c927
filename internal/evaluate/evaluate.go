// Package evaluate measures retrieval quality against a fixed set of test
// queries with known source documents. Each query runs through the same
// retrieval path the answer pipeline uses; a query is a hit when the
// expected document appears among the retrieved unique chunks.
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hetman-rag/internal/vectorstore"
)

// TestQuery is one labeled evaluation case: a query and the corpus file its
// answer should be retrieved from.
type TestQuery struct {
	Query       string `json:"query"`
	ExpectedDoc string `json:"expected_doc"` // Base filename of the source document
	Topic       string `json:"topic,omitempty"`
}

// Result reports the retrieval outcome for one test query.
type Result struct {
	Query    string   `json:"query"`
	Expected string   `json:"expected"`
	Found    []string `json:"found"` // Base filenames of the retrieved chunks' documents
	Hit      bool     `json:"hit"`
}

// Report aggregates the per-query outcomes of one evaluation run.
type Report struct {
	Results []Result `json:"results"`
	Hits    int      `json:"hits"`
}

// HitRate returns the fraction of queries whose expected document was
// retrieved. Zero queries yield a rate of 0.
func (r Report) HitRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.Hits) / float64(len(r.Results))
}

// Retriever is the retrieval path under evaluation.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]vectorstore.Candidate, error)
}

// LoadTestQueries reads a JSON array of test queries.
func LoadTestQueries(path string) ([]TestQuery, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test queries %s: %w", path, err)
	}
	var queries []TestQuery
	if err := json.Unmarshal(raw, &queries); err != nil {
		return nil, fmt.Errorf("failed to decode test queries %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("test query set %s is empty", path)
	}
	return queries, nil
}

// Run retrieves every test query and scores it. A query hits when any
// retrieved chunk's document basename matches the expected document, in
// retrieval rank order. Retrieval errors abort the run; a partially scored
// report would misstate the hit rate.
func Run(ctx context.Context, retriever Retriever, queries []TestQuery) (Report, error) {
	report := Report{Results: make([]Result, 0, len(queries))}

	for _, tq := range queries {
		candidates, err := retriever.Retrieve(ctx, tq.Query)
		if err != nil {
			return Report{}, fmt.Errorf("failed to retrieve for query %q: %w", tq.Query, err)
		}

		found := make([]string, len(candidates))
		hit := false
		for i, c := range candidates {
			found[i] = filepath.Base(c.Meta.DocPath)
			if found[i] == tq.ExpectedDoc {
				hit = true
			}
		}
		if hit {
			report.Hits++
		}
		report.Results = append(report.Results, Result{
			Query:    tq.Query,
			Expected: tq.ExpectedDoc,
			Found:    found,
			Hit:      hit,
		})
	}
	return report, nil
}
