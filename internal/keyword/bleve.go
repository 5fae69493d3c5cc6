package keyword

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/nextbest/internal/models"
)

// DefaultLimit is used when Search is called with limit <= 0.
const DefaultLimit = 20

// nameDoc is the indexed form of a product.
type nameDoc struct {
	Name     string  `json:"name"`
	Position float64 `json:"position"`
}

// BleveIndex implements NameIndex with an in-memory Bleve index.
type BleveIndex struct {
	index bleve.Index
	next  int
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming): "drill" matches "Drill"
	// but not "drilling".
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameMapping)
	positionMapping := bleve.NewNumericFieldMapping()
	docMapping.AddFieldMappingsAt("position", positionMapping)
	im.AddDocumentMapping("product", docMapping)
	im.DefaultType = "product"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Add indexes products. Positions continue from previous calls, so adding a
// catalog in order keeps ties ranked by catalog order.
func (b *BleveIndex) Add(ctx context.Context, products []models.Product) error {
	batch := b.index.NewBatch()
	for _, p := range products {
		doc := nameDoc{Name: p.Name, Position: float64(b.next)}
		if err := batch.Index(strconv.FormatInt(p.ID, 10), doc); err != nil {
			return fmt.Errorf("index product %d: %w", p.ID, err)
		}
		b.next++
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

// Search matches query against product names and returns up to limit hits,
// best first. Equal scores are ordered by catalog position. An empty query
// returns no hits.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	if strings.TrimSpace(query) == "" {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	fuzzyEnabled := false
	fuzziness := 1
	if opts != nil {
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	mq := bleve.NewMatchQuery(query)
	mq.SetField("name")
	results, err := b.run(ctx, mq, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 && fuzzyEnabled {
		return b.run(ctx, buildFuzzyQuery(query, fuzziness), limit)
	}
	return results, nil
}

func (b *BleveIndex) run(ctx context.Context, q blevequery.Query, limit int) ([]*Result, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.SortBy([]string{"-_score", "position"})
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad document id %q: %w", hit.ID, err)
		}
		out = append(out, &Result{ProductID: id, Score: hit.Score})
	}
	return out, nil
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term.
func buildFuzzyQuery(queryStr string, fuzziness int) blevequery.Query {
	terms := strings.Fields(strings.ToLower(queryStr))
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField("name")
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// DocCount returns the number of indexed products.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

var _ NameIndex = (*BleveIndex)(nil)
