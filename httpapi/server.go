package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"pantrypilot"
	"pantrypilot/catalog"
	"pantrypilot/coordinator"
	"pantrypilot/pantry"
	"pantrypilot/recipe"
	"pantrypilot/tools"
)

const maxBodyBytes = 1 << 20

type paginator interface {
	StartSession(ctx context.Context, pantry []recipe.PantryItem, minPrep, maxPrep, batchSize int) (coordinator.Result, error)
	NextBatch(ctx context.Context, token string, batchSize int) (coordinator.Result, error)
	EndSession(ctx context.Context, token string) bool
}

type imageResolver interface {
	ImageURL(ctx context.Context, name string) string
}

type toolRegistry interface {
	GetTools() []tools.Tool
	Invoke(ctx context.Context, call tools.Call) (map[string]any, error)
}

type noImages struct{}

func (noImages) ImageURL(context.Context, string) string { return "" }

type Deps struct {
	Paginator    paginator
	Catalog      catalog.Store
	Pantry       pantry.Store
	Images       imageResolver
	Tools        toolRegistry
	DefaultBatch int
	Tracer       trace.Tracer
}

// Server holds the handlers. Build the router with NewRouter.
type Server struct {
	paginator    paginator
	catalog      catalog.Store
	pantry       pantry.Store
	images       imageResolver
	tools        toolRegistry
	defaultBatch int
	tracer       trace.Tracer
	validate     *validator.Validate
}

func NewServer(d Deps) *Server {
	s := &Server{
		paginator:    d.Paginator,
		catalog:      d.Catalog,
		pantry:       d.Pantry,
		images:       d.Images,
		tools:        d.Tools,
		defaultBatch: d.DefaultBatch,
		tracer:       d.Tracer,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.images == nil {
		s.images = noImages{}
	}
	if s.defaultBatch <= 0 {
		s.defaultBatch = 3
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer(pantrypilot.TracerNameHTTP)
	}
	return s
}

func (s *Server) startMatching(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, &req) {
		return
	}

	items := req.Ingredients
	if len(items) == 0 && s.pantry != nil {
		stored, err := s.pantry.Items(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		items = stored
	}

	batch := req.BatchSize
	if batch == 0 {
		batch = s.defaultBatch
	}

	res, err := s.paginator.StartSession(r.Context(), items, req.MinPrepTime, req.MaxPrepTime, batch)
	if err != nil {
		s.paginationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.page(r.Context(), res))
}

func (s *Server) nextBatch(w http.ResponseWriter, r *http.Request) {
	batch := s.defaultBatch
	if raw := r.URL.Query().Get("batchSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "batchSize must be an integer")
			return
		}
		batch = n
	}

	res, err := s.paginator.NextBatch(r.Context(), chi.URLParam(r, "token"), batch)
	if err != nil {
		s.paginationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.page(r.Context(), res))
}

func (s *Server) endMatching(w http.ResponseWriter, r *http.Request) {
	s.paginator.EndSession(r.Context(), chi.URLParam(r, "token"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) paginationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coordinator.ErrInvalidBatchSize), errors.Is(err, coordinator.ErrInvalidPrepWindow):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	all, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]recipeDTO, 0, len(all))
	for _, rec := range all {
		out = append(out, s.recipe(r.Context(), rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": out})
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, s.recipe(r.Context(), rec))
	}
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if !s.decode(w, r, &rec) {
		return
	}
	rec.ID = ""
	rec.Origin = recipe.OriginStored

	saved, err := s.catalog.Save(r.Context(), rec)
	switch {
	case errors.Is(err, catalog.ErrDuplicateTitle):
		writeError(w, r, http.StatusConflict, fmt.Sprintf("%v: %s", err, saved.Title))
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, s.recipe(r.Context(), saved))
	}
}

func (s *Server) getPantry(w http.ResponseWriter, r *http.Request) {
	items, err := s.pantry.Items(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.pantryItems(r.Context(), items))
}

func (s *Server) replacePantry(w http.ResponseWriter, r *http.Request) {
	var req pantryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.pantry.Replace(r.Context(), req.Ingredients); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.pantryItems(r.Context(), req.Ingredients))
}

type toolDescriptor struct {
	Name         string             `json:"name"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	InputSchema  *jsonschema.Schema `json:"inputSchema"`
	OutputSchema *jsonschema.Schema `json:"outputSchema"`
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	out := []toolDescriptor{}
	for _, t := range s.tools.GetTools() {
		out = append(out, toolDescriptor{
			Name:         t.Name(),
			Title:        t.Title(),
			Description:  t.Description(),
			InputSchema:  t.InputSchema(),
			OutputSchema: t.OutputSchema(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) invokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	found := false
	for _, t := range s.tools.GetTools() {
		if t.Name() == name {
			found = true
			break
		}
	}
	if !found {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("tool %q not found", name))
		return
	}

	input := map[string]any{}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := s.tools.Invoke(r.Context(), tools.Call{Name: name, Input: input, ToolUseID: r.Header.Get("X-Tool-Use-ID")})
	switch {
	case errors.Is(err, tools.ErrInvalidInput),
		errors.Is(err, coordinator.ErrInvalidBatchSize),
		errors.Is(err, coordinator.ErrInvalidPrepWindow):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
