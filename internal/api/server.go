// Package api serves the reshape engine over HTTP so a caller can preview a
// fact table from an uploaded extract without loading the warehouse.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/acs"
	"github.com/sells-group/census-tidy/internal/fetcher"
	"github.com/sells-group/census-tidy/internal/ingest"
	"github.com/sells-group/census-tidy/internal/reshape"
)

// maxUploadBytes caps a reshape request body.
const maxUploadBytes = 32 << 20

// Options configures the router.
type Options struct {
	// LabelColumn is used for facts whose source names none.
	LabelColumn    string
	AllowedOrigins []string // default "*"
}

// FactInfo describes a catalog fact.
type FactInfo struct {
	Name    string   `json:"name"`
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
	Key     []string `json:"key,omitempty"`
}

// ReshapeResponse is the body of a successful reshape.
type ReshapeResponse struct {
	Fact    string             `json:"fact"`
	Columns []string           `json:"columns"`
	Rows    [][]any            `json:"rows"`
	Stats   reshape.BuildStats `json:"stats"`
}

type handler struct {
	catalog *acs.Catalog
	opts    Options
}

// NewRouter returns the HTTP handler for the preview API.
func NewRouter(cat *acs.Catalog, opts Options) http.Handler {
	h := &handler{catalog: cat, opts: opts}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/v1/facts", func(r chi.Router) {
		r.Get("/", h.listFacts)
		r.Get("/{name}", h.getFact)
		r.Post("/{name}/reshape", h.reshape)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listFacts(w http.ResponseWriter, _ *http.Request) {
	out := make([]FactInfo, 0, len(h.catalog.Facts))
	for _, f := range h.catalog.Facts {
		out = append(out, factInfo(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getFact(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.catalog.Fact(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown fact")
		return
	}
	writeJSON(w, http.StatusOK, factInfo(spec))
}

// reshape builds one fact from a CSV extract in the request body. The year
// query parameter becomes the partition of every row.
func (h *handler) reshape(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	spec, ok := h.catalog.Fact(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown fact")
		return
	}

	year := strings.TrimSpace(r.URL.Query().Get("year"))
	if year != "" && reshape.ParseYear(year) == nil {
		writeError(w, http.StatusBadRequest, "year must be a number")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	records, err := fetcher.ReadCSV(r.Context(), body, fetcher.CSVOptions{
		LazyQuotes: true,
		StripBOM:   true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid csv body")
		return
	}

	frame, err := ingest.FrameFromRecords("upload", h.labelColumn(spec), year, records)
	if err != nil {
		writeError(w, http.StatusBadRequest, "empty csv body")
		return
	}

	table, stats, err := reshape.Build(frame, spec)
	switch {
	case eris.Is(err, reshape.ErrNoMetricColumns):
		writeError(w, http.StatusUnprocessableEntity, "no column matches <dimension>!!<category>!!Estimate for this fact")
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	zap.L().Debug("preview reshape",
		zap.String("fact", name),
		zap.Int("records", stats.Records),
		zap.Int("excluded_columns", stats.ExcludedColumns()),
	)

	rows := table.Rows
	if rows == nil {
		rows = [][]any{}
	}
	writeJSON(w, http.StatusOK, ReshapeResponse{
		Fact:    name,
		Columns: table.Schema.ColumnNames(),
		Rows:    rows,
		Stats:   stats,
	})
}

func (h *handler) labelColumn(spec reshape.FactSpec) string {
	if src, ok := h.catalog.Source(spec.Source); ok && src.LabelColumn != "" {
		return src.LabelColumn
	}
	return h.opts.LabelColumn
}

func factInfo(f reshape.FactSpec) FactInfo {
	return FactInfo{
		Name:    f.Name,
		Source:  f.Source,
		Columns: f.Schema.ColumnNames(),
		Key:     f.Schema.Key,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("component", "api"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
