package search

import (
	"regexp"
	"sort"

	"github.com/blevesearch/bleve/v2/analysis"

	"github.com/goliatone/go-awesome-pages/internal/diagnostics"
	"github.com/goliatone/go-awesome-pages/internal/domain"
	"github.com/goliatone/go-awesome-pages/internal/logging"
	"github.com/goliatone/go-awesome-pages/pkg/interfaces"
)

// SchemaVersion of the serialized index.
const SchemaVersion = 1

// FieldWeights multiply per-field token counts into posting weights.
type FieldWeights struct {
	Title       float64 `json:"title"`
	Description float64 `json:"description"`
	Tags        float64 `json:"tags"`
}

// DefaultFieldWeights favours titles over tags over descriptions.
var DefaultFieldWeights = FieldWeights{Title: 2, Description: 1, Tags: 1.5}

// Meta describes where the indexed domain came from.
type Meta struct {
	Source       string       `json:"source,omitempty"`
	Repo         string       `json:"repo,omitempty"`
	Ref          string       `json:"ref,omitempty"`
	Path         string       `json:"path,omitempty"`
	GeneratedAt  string       `json:"generatedAt"`
	FieldWeights FieldWeights `json:"fieldWeights"`
}

// Stats counts documents and distinct terms.
type Stats struct {
	Docs  int `json:"docs"`
	Terms int `json:"terms"`
}

// Doc is the minimal per-item payload returned with search hits.
type Doc struct {
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	SectionID string `json:"sectionId"`
}

// Posting is one document entry in a term's postings list.
type Posting struct {
	ID string  `json:"id"`
	F  float64 `json:"f"`
}

// Index is an inverted index over domain items keyed by item id.
type Index struct {
	SchemaVersion int                  `json:"schemaVersion"`
	Meta          Meta                 `json:"meta"`
	Stats         Stats                `json:"stats"`
	Docs          map[string]Doc       `json:"docs"`
	Terms         map[string][]Posting `json:"terms"`
}

// Postings returns the postings for a single token, strongest first.
func (idx *Index) Postings(token string) []Posting {
	if idx == nil {
		return nil
	}
	return idx.Terms[token]
}

type options struct {
	weights   FieldWeights
	stopwords analysis.TokenMap
	diags     *diagnostics.List
	logger    interfaces.Logger
}

// Option configures BuildIndex.
type Option func(*options)

// WithFieldWeights overrides DefaultFieldWeights.
func WithFieldWeights(w FieldWeights) Option {
	return func(o *options) { o.weights = w }
}

// WithStopwords replaces the language stopword list.
func WithStopwords(set analysis.TokenMap) Option {
	return func(o *options) { o.stopwords = set }
}

// WithDiagnostics records soft conditions such as a stopword fallback.
func WithDiagnostics(list *diagnostics.List) Option {
	return func(o *options) { o.diags = list }
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type fieldCounts struct {
	title, description, tags int
}

// BuildIndex tokenizes every item of d and builds weighted postings. Equal
// weights keep the order in which documents first produced the term.
func BuildIndex(d *domain.Domain, opts ...Option) *Index {
	cfg := options{weights: DefaultFieldWeights, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	idx := &Index{
		SchemaVersion: SchemaVersion,
		Docs:          map[string]Doc{},
		Terms:         map[string][]Posting{},
	}
	if d == nil {
		idx.Meta.FieldWeights = cfg.weights
		return idx
	}

	stopwords := cfg.stopwords
	if stopwords == nil {
		lang := DefaultLanguage
		if d.Meta.Language != nil && *d.Meta.Language != "" {
			lang = *d.Meta.Language
		}
		var supported bool
		stopwords, supported = Stopwords(lang)
		if !supported {
			cfg.diags.Info(diagnostics.CodeUnsupportedStopwords, "no stopword list for %q; using %s", lang, DefaultLanguage)
		}
	}

	counts := map[string]map[string]*fieldCounts{}
	docOrder := map[string][]string{}
	bump := func(token, docID string, field func(*fieldCounts)) {
		perDoc, ok := counts[token]
		if !ok {
			perDoc = map[string]*fieldCounts{}
			counts[token] = perDoc
		}
		c, ok := perDoc[docID]
		if !ok {
			c = &fieldCounts{}
			perDoc[docID] = c
			docOrder[token] = append(docOrder[token], docID)
		}
		field(c)
	}

	for _, item := range d.Items {
		idx.Docs[item.ID] = Doc{Title: item.Title, URL: item.URL, SectionID: item.SectionID}

		for _, token := range Tokenize(item.Title, stopwords) {
			bump(token, item.ID, func(c *fieldCounts) { c.title++ })
		}
		if item.Description != nil {
			for _, token := range Tokenize(*item.Description, stopwords) {
				bump(token, item.ID, func(c *fieldCounts) { c.description++ })
			}
		}
		for _, tag := range item.Tags {
			for _, token := range Tokenize(tag, stopwords) {
				bump(token, item.ID, func(c *fieldCounts) { c.tags++ })
			}
		}
	}

	w := cfg.weights
	for token, ids := range docOrder {
		postings := make([]Posting, 0, len(ids))
		for _, id := range ids {
			c := counts[token][id]
			postings = append(postings, Posting{
				ID: id,
				F:  float64(c.title)*w.Title + float64(c.description)*w.Description + float64(c.tags)*w.Tags,
			})
		}
		sort.SliceStable(postings, func(i, j int) bool {
			return postings[i].F > postings[j].F
		})
		idx.Terms[token] = postings
	}

	idx.Meta = sourceMeta(d.Meta.Source)
	idx.Meta.GeneratedAt = d.Meta.GeneratedAt
	idx.Meta.FieldWeights = w
	idx.Stats = Stats{Docs: len(idx.Docs), Terms: len(idx.Terms)}

	cfg.logger.Debug("search.index_built", "source", d.Meta.Source, "docs", idx.Stats.Docs, "terms", idx.Stats.Terms)
	return idx
}

var githubSource = regexp.MustCompile(`^github:([^@]+)@([^:]+):(.+)$`)

// sourceMeta splits "github:owner/repo@ref:path" into its parts; any other
// source is kept whole.
func sourceMeta(source string) Meta {
	if m := githubSource.FindStringSubmatch(source); m != nil {
		return Meta{Repo: m[1], Ref: m[2], Path: m[3]}
	}
	return Meta{Source: source}
}
