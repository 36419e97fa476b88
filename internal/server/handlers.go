package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"GoSnippet/internal/config"
	"GoSnippet/internal/dispatch"
	"GoSnippet/internal/engine"
	"GoSnippet/internal/highlight"
	"GoSnippet/internal/index"
	"GoSnippet/internal/indexing"
	"GoSnippet/internal/query"
)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	mgr    *IndexManager
	pool   *dispatch.Pool
	cfg    config.Config
	logger *slog.Logger
}

// NewHandler creates a Handler backed by the given IndexManager and
// dispatch pool.
func NewHandler(mgr *IndexManager, pool *dispatch.Pool, cfg config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mgr: mgr, pool: pool, cfg: cfg, logger: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Index lifecycle.
	mux.HandleFunc("GET /indexes", h.handleListIndexes)
	mux.HandleFunc("POST /indexes", h.handleCreateIndex)
	mux.HandleFunc("GET /indexes/{name}", h.handleGetIndex)
	mux.HandleFunc("DELETE /indexes/{name}", h.handleDeleteIndex)

	// Document ingestion, deletion, update.
	mux.HandleFunc("POST /indexes/{name}/documents", h.handleIngestDocuments)
	mux.HandleFunc("DELETE /indexes/{name}/documents", h.handleDeleteByTerm)
	mux.HandleFunc("POST /indexes/{name}/documents/update", h.handleUpdateByTerm)

	// Commit.
	mux.HandleFunc("POST /indexes/{name}/commit", h.handleCommit)

	// Search.
	mux.HandleFunc("POST /indexes/{name}/search", h.handleSearch)
}

// dispatchAndWait runs the operation on the pool and waits for its result.
func (h *Handler) dispatchAndWait(w http.ResponseWriter, r *http.Request, name string, op dispatch.Op) (any, bool) {
	task, err := h.pool.Submit(name, op)
	if err != nil {
		if errors.Is(err, dispatch.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "server is overloaded, retry later")
			return nil, false
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}

	value, err := task.Wait(r.Context())
	if err != nil {
		h.writeOpError(w, err)
		return nil, false
	}
	return value, true
}

// writeOpError maps operation errors to HTTP status codes.
func (h *Handler) writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrIndexNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrIndexExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrIndexEmpty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrQueryTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, highlight.ErrIndexAccess):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// errBadRequest marks validation failures raised inside dispatched ops.
var errBadRequest = errors.New("bad request")

// --- Index Lifecycle ---

func (h *Handler) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	names := h.mgr.ListIndexes()

	infos := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		inst, err := h.mgr.GetIndex(name)
		if err != nil {
			continue
		}
		infos = append(infos, inst.IndexInfo())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indexes": infos,
	})
}

func (h *Handler) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string           `json:"name"`
		DefaultAnalyzer string           `json:"default_analyzer"`
		Fields          []index.FieldDef `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "index name is required")
		return
	}

	schema := &index.Schema{
		DefaultAnalyzer: req.DefaultAnalyzer,
		Fields:          req.Fields,
	}

	_, ok := h.dispatchAndWait(w, r, "create_index", func(context.Context) (any, error) {
		return nil, h.mgr.CreateIndex(req.Name, schema)
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status": "created",
		"name":   req.Name,
	})
}

func (h *Handler) handleGetIndex(w http.ResponseWriter, r *http.Request) {
	inst, err := h.mgr.GetIndex(r.PathValue("name"))
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst.IndexInfo())
}

func (h *Handler) handleDeleteIndex(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	_, ok := h.dispatchAndWait(w, r, "delete_index", func(context.Context) (any, error) {
		return nil, h.mgr.DeleteIndex(name)
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"name":   name,
	})
}

// --- Document Ingestion ---

func (h *Handler) handleIngestDocuments(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		Documents []map[string]interface{} `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "no documents provided")
		return
	}

	docs := make([]indexing.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = indexing.Document{Fields: d}
	}

	_, ok := h.dispatchAndWait(w, r, "ingest", func(context.Context) (any, error) {
		inst, err := h.mgr.GetIndex(name)
		if err != nil {
			return nil, err
		}
		return nil, inst.IngestDocuments(docs)
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "accepted",
		"documents_received": len(docs),
	})
}

// --- Document Deletion and Update ---

func (h *Handler) handleDeleteByTerm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		Field string `json:"field"`
		Term  string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Field == "" || req.Term == "" {
		writeError(w, http.StatusBadRequest, "field and term are required")
		return
	}

	_, ok := h.dispatchAndWait(w, r, "delete_by_term", func(context.Context) (any, error) {
		inst, err := h.mgr.GetIndex(name)
		if err != nil {
			return nil, err
		}
		return nil, inst.StageDeletion(req.Field, req.Term)
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "staged",
		"field":  req.Field,
		"term":   req.Term,
	})
}

// handleUpdateByTerm stages a delete-by-term and ingests the replacement
// document in the same batch. The swap becomes visible at the next commit.
func (h *Handler) handleUpdateByTerm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		Field    string                 `json:"field"`
		Term     string                 `json:"term"`
		Document map[string]interface{} `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Field == "" || req.Term == "" || req.Document == nil {
		writeError(w, http.StatusBadRequest, "field, term, and document are required")
		return
	}

	_, ok := h.dispatchAndWait(w, r, "update_by_term", func(context.Context) (any, error) {
		inst, err := h.mgr.GetIndex(name)
		if err != nil {
			return nil, err
		}
		if err := inst.StageDeletion(req.Field, req.Term); err != nil {
			return nil, err
		}
		return nil, inst.IngestDocuments([]indexing.Document{{Fields: req.Document}})
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "staged",
		"field":  req.Field,
		"term":   req.Term,
	})
}

// --- Commit ---

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	value, ok := h.dispatchAndWait(w, r, "commit", func(context.Context) (any, error) {
		inst, err := h.mgr.GetIndex(name)
		if err != nil {
			return nil, err
		}
		return inst.Commit()
	})
	if !ok {
		return
	}

	result := value.(*CommitResult)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "committed",
		"generation":   result.Generation,
		"segment_docs": result.SegmentDocs,
		"deleted_docs": result.DeletedDocs,
		"duration_ms":  result.Duration.Milliseconds(),
	})
}

// --- Search ---

// queryNode is the wire form of a query AST node.
type queryNode struct {
	Type    string       `json:"type"`
	Field   string       `json:"field,omitempty"`
	Value   string       `json:"value,omitempty"`
	Clauses []clauseNode `json:"clauses,omitempty"`
}

type clauseNode struct {
	Occur string    `json:"occur"`
	Query queryNode `json:"query"`
}

// searchRequest represents a search query.
type searchRequest struct {
	Query            queryNode `json:"query"`
	Limit            int       `json:"limit"`
	SnippetField     string    `json:"snippet_field"`
	SnippetMaxLength int       `json:"snippet_max_length"`
	RawMarkup        bool      `json:"raw_markup"`
}

// searchHit is one result row.
type searchHit struct {
	ID         string              `json:"id"`
	Generation uint64              `json:"generation"`
	Fields     map[string][]string `json:"fields,omitempty"`
	Snippet    *snippetPayload     `json:"snippet,omitempty"`
}

type snippetPayload struct {
	Text       string   `json:"text"`
	Markup     string   `json:"markup"`
	Highlights [][2]int `json:"highlights"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Limit <= 0 || req.Limit > h.cfg.MaxHits {
		req.Limit = h.cfg.MaxHits
	}

	start := time.Now()

	value, ok := h.dispatchAndWait(w, r, "search", func(context.Context) (any, error) {
		inst, err := h.mgr.GetIndex(name)
		if err != nil {
			return nil, err
		}
		return h.executeSearch(inst, &req)
	})
	if !ok {
		return
	}

	hits := value.([]searchHit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"took_ms":    time.Since(start).Milliseconds(),
		"total_hits": len(hits),
		"hits":       hits,
	})
}

// executeSearch runs the query against a snapshot of the index and
// decorates each hit with an excerpt of the snippet field.
func (h *Handler) executeSearch(inst *IndexInstance, req *searchRequest) ([]searchHit, error) {
	reader := inst.Reader()

	q, err := h.buildQuery(&req.Query, reader, 0)
	if err != nil {
		return nil, err
	}

	snippetField := req.SnippetField
	if snippetField == "" {
		snippetField = primaryField(q)
	}

	var gen *highlight.Generator
	if snippetField != "" {
		gen, err = highlight.NewGenerator(reader, &query.FieldTermSource{Query: q}, snippetField)
		if err != nil {
			return nil, err
		}
		maxLength := h.cfg.SnippetMaxLength
		if req.SnippetMaxLength > 0 {
			maxLength = req.SnippetMaxLength
		}
		gen.SetMaxLength(maxLength)
	}

	execCtx := engine.NewExecutionContext(h.cfg.QueryTimeout(), 0)
	hits := make([]searchHit, 0, req.Limit)

	for _, seg := range reader.Segments() {
		remaining := req.Limit - len(hits)
		if remaining <= 0 {
			break
		}
		collector := engine.NewDocCollector(remaining)
		if err := engine.Execute(q, seg, execCtx, collector); err != nil {
			return nil, err
		}

		for _, docID := range collector.Results() {
			doc, ok := seg.Document(docID)
			if !ok {
				continue
			}
			extID, _ := seg.ExternalID(docID)
			hit := searchHit{
				ID:         extID,
				Generation: seg.Generation,
				Fields:     doc,
			}
			if gen != nil {
				if s := gen.SnippetFromDocument(doc); !s.IsEmpty() {
					hit.Snippet = renderSnippet(s, req.RawMarkup)
				}
			}
			hits = append(hits, hit)
		}
	}

	return hits, nil
}

func renderSnippet(s highlight.Snippet, raw bool) *snippetPayload {
	markup := s.EscapedMarkup()
	if raw {
		markup = s.RawMarkup()
	}
	sections := s.Highlights()
	highlights := make([][2]int, len(sections))
	for i, sec := range sections {
		start, stop := sec.Bounds()
		highlights[i] = [2]int{start, stop}
	}
	return &snippetPayload{
		Text:       s.Text(),
		Markup:     markup,
		Highlights: highlights,
	}
}

// buildQuery translates a wire query node into the query AST. Term and
// phrase values run through the field's analyzer so matching and
// highlighting agree on term form.
func (h *Handler) buildQuery(node *queryNode, reader *indexing.Reader, depth int) (query.Query, error) {
	if depth > query.MaxBooleanDepth {
		return nil, fmt.Errorf("%w: query nesting too deep", errBadRequest)
	}

	switch node.Type {
	case "term":
		terms, err := analyzeValue(reader, node.Field, node.Value)
		if err != nil {
			return nil, err
		}
		if len(terms) == 0 {
			return &query.MatchNoneQuery{}, nil
		}
		if len(terms) == 1 {
			return &query.TermQuery{Field: node.Field, Term: terms[0]}, nil
		}
		// Multi-token input degrades to requiring every token.
		return &query.PhraseQuery{Field: node.Field, Terms: terms}, nil

	case "phrase":
		terms, err := analyzeValue(reader, node.Field, node.Value)
		if err != nil {
			return nil, err
		}
		if len(terms) == 0 {
			return &query.MatchNoneQuery{}, nil
		}
		if len(terms) > query.MaxPhraseLength {
			return nil, fmt.Errorf("%w: phrase has too many terms", errBadRequest)
		}
		return &query.PhraseQuery{Field: node.Field, Terms: terms}, nil

	case "prefix":
		if node.Field == "" || node.Value == "" {
			return nil, fmt.Errorf("%w: prefix query requires field and value", errBadRequest)
		}
		return &query.PrefixQuery{Field: node.Field, Prefix: node.Value}, nil

	case "match_all":
		return &query.MatchAllQuery{}, nil

	case "match_none":
		return &query.MatchNoneQuery{}, nil

	case "boolean":
		if len(node.Clauses) == 0 {
			return nil, fmt.Errorf("%w: boolean query requires clauses", errBadRequest)
		}
		if len(node.Clauses) > query.MaxBooleanClauses {
			return nil, fmt.Errorf("%w: boolean query has too many clauses", errBadRequest)
		}
		clauses := make([]query.BooleanClause, 0, len(node.Clauses))
		for i := range node.Clauses {
			sub, err := h.buildQuery(&node.Clauses[i].Query, reader, depth+1)
			if err != nil {
				return nil, err
			}
			occur, err := parseOccur(node.Clauses[i].Occur)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, query.BooleanClause{Occur: occur, Query: sub})
		}
		return &query.BooleanQuery{Clauses: clauses}, nil

	default:
		return nil, fmt.Errorf("%w: unknown query type %q", errBadRequest, node.Type)
	}
}

func parseOccur(s string) (query.BooleanOp, error) {
	switch s {
	case "must", "":
		return query.BooleanMust, nil
	case "should":
		return query.BooleanShould, nil
	case "must_not":
		return query.BooleanMustNot, nil
	default:
		return 0, fmt.Errorf("%w: unknown occur %q", errBadRequest, s)
	}
}

// analyzeValue tokenizes the raw query value with the field's analyzer.
func analyzeValue(reader *indexing.Reader, field, value string) ([]string, error) {
	if field == "" {
		return nil, fmt.Errorf("%w: query requires a field", errBadRequest)
	}
	analyzer, err := reader.AnalyzerFor(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	toks := analyzer.Analyze(field, value)
	terms := make([]string, len(toks))
	for i, tok := range toks {
		terms[i] = tok.Term
	}
	return terms, nil
}

// primaryField picks the field an excerpt should come from when the
// request does not name one: the first field mentioned by the query.
func primaryField(q query.Query) string {
	switch node := q.(type) {
	case *query.TermQuery:
		return node.Field
	case *query.PhraseQuery:
		return node.Field
	case *query.PrefixQuery:
		return node.Field
	case *query.BooleanQuery:
		for _, clause := range node.Clauses {
			if clause.Occur == query.BooleanMustNot {
				continue
			}
			if f := primaryField(clause.Query); f != "" {
				return f
			}
		}
	}
	return ""
}
