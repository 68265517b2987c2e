// Package coordinator paginates matched and generated recipes across
// repeated requests for the same session token.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"pantrypilot"
	"pantrypilot/catalog"
	"pantrypilot/generator"
	"pantrypilot/matching"
	"pantrypilot/recipe"
	"pantrypilot/session"
)

var (
	ErrInvalidBatchSize  = errors.New("batch size must be positive")
	ErrInvalidPrepWindow = errors.New("min prep time must not exceed max prep time")
)

const (
	MessageNoMatches   = "No recipes found for given ingredients and prep time."
	MessageNoMore      = "No more recipes available."
	messageQuotaFormat = "AI recipe limit reached (max %d per session)."

	DefaultRetries        = 3
	DefaultAttemptTimeout = 20 * time.Second
)

// Result is one page of recipes for a session.
type Result struct {
	Token           string          `json:"token,omitempty"`
	Recipes         []recipe.Recipe `json:"recipes"`
	State           session.State   `json:"state"`
	Message         string          `json:"message,omitempty"`
	GeneratedServed int             `json:"generatedServedCount"`
	RemainingQuota  int             `json:"remainingQuota"`
}

type Options struct {
	Engine    *matching.Engine
	Generator generator.Generator
	Sessions  *session.Cache
	Catalog   catalog.Store
	Validator *matching.Validator

	Retries        int
	AttemptTimeout time.Duration

	Logger       pantrypilot.GenerationLogger
	Alerter      pantrypilot.SlackClient
	AlertChannel string

	Tracer trace.Tracer
	Meter  metric.Meter
}

// Coordinator drives the FRESH → SERVING → GENERATING → EXHAUSTED lifecycle of
// a session. It is safe for concurrent use.
type Coordinator struct {
	engine    *matching.Engine
	gen       generator.Generator
	sessions  *session.Cache
	catalog   catalog.Store
	validator *matching.Validator

	retries        int
	attemptTimeout time.Duration

	logger       pantrypilot.GenerationLogger
	alerter      pantrypilot.SlackClient
	alertChannel string

	tracer  trace.Tracer
	metrics *instruments
}

func New(opts Options) (*Coordinator, error) {
	switch {
	case opts.Engine == nil:
		return nil, errors.New("coordinator: engine is required")
	case opts.Generator == nil:
		return nil, errors.New("coordinator: generator is required")
	case opts.Sessions == nil:
		return nil, errors.New("coordinator: session cache is required")
	case opts.Catalog == nil:
		return nil, errors.New("coordinator: catalog is required")
	}

	c := &Coordinator{
		engine:         opts.Engine,
		gen:            opts.Generator,
		sessions:       opts.Sessions,
		catalog:        opts.Catalog,
		validator:      opts.Validator,
		retries:        opts.Retries,
		attemptTimeout: opts.AttemptTimeout,
		logger:         opts.Logger,
		alerter:        opts.Alerter,
		alertChannel:   opts.AlertChannel,
		tracer:         opts.Tracer,
	}
	if c.validator == nil {
		c.validator = matching.NewValidator(matching.DefaultIngredientRatio)
	}
	if c.retries <= 0 {
		c.retries = DefaultRetries
	}
	if c.attemptTimeout <= 0 {
		c.attemptTimeout = DefaultAttemptTimeout
	}
	if c.logger == nil {
		c.logger = pantrypilot.NewNoOpGenerationLogger()
	}
	if c.alerter == nil {
		c.alerter = pantrypilot.NoOpSlackClient{}
	}
	if c.tracer == nil {
		c.tracer = tracenoop.NewTracerProvider().Tracer(pantrypilot.TracerNameCoordinator)
	}
	meter := opts.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(pantrypilot.TracerNameCoordinator)
	}

	m, err := newInstruments(meter)
	if err != nil {
		return nil, fmt.Errorf("coordinator: create instruments: %w", err)
	}
	c.metrics = m
	return c, nil
}

// StartSession matches stored recipes, fills any shortfall from the generator
// and returns the first batch under a new token.
func (c *Coordinator) StartSession(ctx context.Context, pantry []recipe.PantryItem, minPrep, maxPrep, batchSize int) (Result, error) {
	if batchSize <= 0 {
		return Result{}, ErrInvalidBatchSize
	}
	if minPrep > maxPrep {
		return Result{}, ErrInvalidPrepWindow
	}

	ctx, span := c.tracer.Start(ctx, "Coordinator.StartSession",
		trace.WithAttributes(
			attribute.Int("pantry.size", len(pantry)),
			attribute.Int("prep.min", minPrep),
			attribute.Int("prep.max", maxPrep),
			attribute.Int("batch.size", batchSize),
		))
	defer span.End()

	slog.Info("COORDINATOR: Starting session",
		"pantry_items", len(pantry),
		"min_prep", minPrep,
		"max_prep", maxPrep,
		"batch_size", batchSize)

	matches, err := c.engine.FindMatches(ctx, pantry, minPrep, maxPrep)
	if err != nil {
		span.SetStatus(codes.Error, "matching failed")
		span.RecordError(err)
		return Result{}, fmt.Errorf("find matches: %w", err)
	}
	span.SetAttributes(attribute.Int("matches.stored", len(matches)))

	recipes := matches
	if shortfall := batchSize - len(matches); shortfall > 0 && len(recipe.PantryNames(pantry)) > 0 {
		exclude := make([]string, 0, len(matches))
		for _, r := range matches {
			exclude = append(exclude, r.Key())
		}
		generated := c.generate(ctx, genRequest{
			pantry:  pantry,
			minPrep: minPrep,
			maxPrep: maxPrep,
			exclude: exclude,
			want:    min(shortfall, c.sessions.MaxGenerated()),
		})
		recipes = append(recipes, generated...)
	}

	token := c.sessions.Create(pantry, minPrep, maxPrep, recipes)
	span.SetAttributes(attribute.String("session.token", token))
	c.metrics.sessionsStarted.Add(ctx, 1)

	batch, err := c.sessions.Draw(token, batchSize)
	if err != nil {
		// Swept between Create and Draw; only possible with a near-zero TTL.
		return c.unknownToken(token), nil
	}

	res, _ := c.result(ctx, token, batch)
	if len(res.Recipes) == 0 {
		res.Message = MessageNoMatches
	}
	return res, nil
}

// NextBatch serves the next page for token. Unknown or expired tokens yield an
// empty EXHAUSTED result rather than an error.
func (c *Coordinator) NextBatch(ctx context.Context, token string, batchSize int) (Result, error) {
	if batchSize <= 0 {
		return Result{}, ErrInvalidBatchSize
	}

	ctx, span := c.tracer.Start(ctx, "Coordinator.NextBatch",
		trace.WithAttributes(
			attribute.String("session.token", token),
			attribute.Int("batch.size", batchSize),
		))
	defer span.End()

	batch, err := c.sessions.Draw(token, batchSize)
	if errors.Is(err, session.ErrNotFound) {
		slog.Info("COORDINATOR: Unknown session token", "token", token)
		span.SetAttributes(attribute.Bool("session.found", false))
		return c.unknownToken(token), nil
	}

	if len(batch) < batchSize {
		batch = c.refill(ctx, token, batch, batchSize)
	}

	res, live := c.result(ctx, token, batch)
	if len(res.Recipes) == 0 {
		if live && res.RemainingQuota == 0 {
			res.Message = fmt.Sprintf(messageQuotaFormat, c.sessions.MaxGenerated())
		} else {
			res.Message = MessageNoMore
		}
	}
	return res, nil
}

// EndSession discards the token's state. It reports whether the token existed.
func (c *Coordinator) EndSession(ctx context.Context, token string) bool {
	_, span := c.tracer.Start(ctx, "Coordinator.EndSession",
		trace.WithAttributes(attribute.String("session.token", token)))
	defer span.End()

	ok := c.sessions.Delete(token)
	slog.Info("COORDINATOR: Session ended", "token", token, "found", ok)
	return ok
}

// refill generates into the session when the stored recipes ran out and the
// generated quota allows it, then scans once more.
func (c *Coordinator) refill(ctx context.Context, token string, batch []recipe.Recipe, batchSize int) []recipe.Recipe {
	snap, err := c.sessions.Snapshot(token)
	if err != nil || snap.QuotaSpent() {
		return batch
	}

	if err := c.sessions.SetState(token, session.StateGenerating); err != nil {
		return batch
	}

	generated := c.generate(ctx, genRequest{
		token:   token,
		pantry:  snap.Pantry,
		minPrep: snap.MinPrepTime,
		maxPrep: snap.MaxPrepTime,
		exclude: snap.AllTitles,
		want:    min(batchSize-len(batch), snap.RemainingQuota),
	})

	if _, err := c.sessions.Append(token, generated); err != nil {
		return batch
	}
	more, err := c.sessions.Draw(token, batchSize-len(batch))
	if err != nil {
		return batch
	}
	return append(batch, more...)
}

// result builds the page for batch. live is false when the token vanished
// (swept or ended) after the batch was drawn.
func (c *Coordinator) result(ctx context.Context, token string, batch []recipe.Recipe) (res Result, live bool) {
	res = Result{Token: token, Recipes: batch, State: session.StateExhausted}
	if snap, err := c.sessions.Snapshot(token); err == nil {
		live = true
		res.State = snap.State
		res.GeneratedServed = snap.GeneratedServed
		res.RemainingQuota = snap.RemainingQuota
	}

	var generated int
	for _, r := range batch {
		if r.IsGenerated() {
			generated++
		}
	}
	c.metrics.batchesServed.Add(ctx, 1)
	c.metrics.recipesServed.Add(ctx, int64(len(batch)-generated), metric.WithAttributes(attribute.String("origin", string(recipe.OriginStored))))
	c.metrics.recipesServed.Add(ctx, int64(generated), metric.WithAttributes(attribute.String("origin", string(recipe.OriginGenerated))))

	slog.Info("COORDINATOR: Batch served",
		"token", token,
		"recipes", len(batch),
		"generated", generated,
		"state", res.State,
		"remaining_quota", res.RemainingQuota)
	return res, live
}

func (c *Coordinator) unknownToken(token string) Result {
	return Result{
		Token:   token,
		Recipes: []recipe.Recipe{},
		State:   session.StateExhausted,
		Message: MessageNoMore,
	}
}
