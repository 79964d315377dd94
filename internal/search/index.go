// Package search keeps an in-memory full-text index over the items of the
// latest refresh so articles and events can be looked up by keyword.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/sowestart/internal/storage"
)

const (
	KindArticle = "article"
	KindEvent   = "event"

	DefaultLimit = 10
	minQueryLen  = 2
)

// Result is one search hit.
type Result struct {
	Kind        string
	Title       string
	Description string
	URL         string
	Feed        string
	Score       float64
}

// Index is a memory-only bleve index. Documents are keyed by kind plus
// link or UID, so indexing the same item twice replaces it.
type Index struct {
	idx bleve.Index
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func (i *Index) Close() error {
	return i.idx.Close()
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	feed := bleve.NewTextFieldMapping()
	feed.Analyzer = standard.Name
	feed.Store = true

	kind := bleve.NewTextFieldMapping()
	kind.Analyzer = keyword.Name
	kind.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("url", url)
	dm.AddFieldMappingsAt("feed", feed)
	dm.AddFieldMappingsAt("kind", kind)

	im.DefaultMapping = dm
	return im
}

func (i *Index) IndexArticles(articles []storage.Article) error {
	batch := i.idx.NewBatch()
	for _, a := range articles {
		if err := batch.Index(KindArticle+":"+a.Link, map[string]any{
			"kind":        KindArticle,
			"title":       a.Title,
			"description": a.Description,
			"url":         a.Link,
			"feed":        a.FeedName,
		}); err != nil {
			return fmt.Errorf("indexing article %q: %w", a.Title, err)
		}
	}
	return i.idx.Batch(batch)
}

func (i *Index) IndexEvents(events []storage.CalendarEvent) error {
	batch := i.idx.NewBatch()
	for _, ev := range events {
		desc := ev.Description
		if ev.Location != "" {
			desc = strings.TrimSpace(desc + " " + ev.Location)
		}
		if err := batch.Index(eventID(ev), map[string]any{
			"kind":        KindEvent,
			"title":       ev.Summary,
			"description": desc,
			"url":         ev.URL,
			"feed":        ev.FeedName,
		}); err != nil {
			return fmt.Errorf("indexing event %q: %w", ev.Summary, err)
		}
	}
	return i.idx.Batch(batch)
}

// eventID prefers the UID. Recurring instances share a UID, so the start
// time is always part of the key.
func eventID(ev storage.CalendarEvent) string {
	key := ev.UID
	if key == "" {
		key = ev.Summary
	}
	return fmt.Sprintf("%s:%s:%s:%d", KindEvent, ev.FeedName, key, ev.Start.Unix())
}

// Search runs an OR of per-term match and prefix queries, boosted so title
// hits outrank description, feed and URL hits. Queries shorter than two
// characters return no results.
func (i *Index) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < minQueryLen {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qs = append(qs,
			fieldQuery(bleve.NewMatchQuery(tok), "title", 4.0),
			fieldQuery(bleve.NewPrefixQuery(tok), "title", 3.5),
			fieldQuery(bleve.NewMatchQuery(tok), "description", 2.0),
			fieldQuery(bleve.NewPrefixQuery(tok), "description", 1.8),
			fieldQuery(bleve.NewMatchQuery(tok), "feed", 1.0),
			fieldQuery(bleve.NewMatchQuery(tok), "url", 0.5),
		)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"kind", "title", "description", "url", "feed"}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, &Result{
			Kind:        stringField(h.Fields, "kind"),
			Title:       stringField(h.Fields, "title"),
			Description: stringField(h.Fields, "description"),
			URL:         stringField(h.Fields, "url"),
			Feed:        stringField(h.Fields, "feed"),
			Score:       h.Score,
		})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (i *Index) DocCount() (int, error) {
	n, err := i.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type fieldBoostQuery interface {
	bleveQuery.Query
	SetField(string)
	SetBoost(float64)
}

func fieldQuery(q fieldBoostQuery, field string, boost float64) bleveQuery.Query {
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single characters are dropped.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
