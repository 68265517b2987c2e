package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"pantrypilot"
	"pantrypilot/catalog"
	"pantrypilot/generator"
	"pantrypilot/recipe"
)

type genRequest struct {
	token   string
	pantry  []recipe.PantryItem
	minPrep int
	maxPrep int
	exclude []string
	want    int
}

// generate asks the generator for up to req.want new recipes, retrying while
// short. Accepted recipes are either reused from the catalog or persisted to it.
func (c *Coordinator) generate(ctx context.Context, req genRequest) []recipe.Recipe {
	if req.want <= 0 {
		return nil
	}

	// Generation outlives an abandoned request; results still land in the session.
	ctx = context.WithoutCancel(ctx)
	ctx, span := c.tracer.Start(ctx, "Coordinator.Generate",
		trace.WithAttributes(
			attribute.String("session.token", req.token),
			attribute.Int("generate.want", req.want),
			attribute.Int("generate.excluded", len(req.exclude)),
		))
	defer span.End()

	seen := make(map[string]struct{}, len(req.exclude)+req.want)
	for _, t := range req.exclude {
		seen[recipe.NormalizeTitle(t)] = struct{}{}
	}

	out := make([]recipe.Recipe, 0, req.want)
	var (
		attempts int
		failures int
		lastErr  error
	)

	for attempt := 1; attempt <= c.retries && len(out) < req.want; attempt++ {
		attempts++
		need := req.want - len(out)

		attemptLog := pantrypilot.GenerationAttemptLog{
			Token:     req.token,
			Attempt:   attempt,
			Timestamp: time.Now(),
			Requested: need,
		}

		slog.Info("COORDINATOR: Requesting generated recipes",
			"token", req.token,
			"attempt", attempt,
			"count", need)

		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		start := time.Now()
		recipes, err := c.gen.Generate(attemptCtx, generator.Request{
			Pantry:         recipe.ClonePantry(req.pantry),
			MinPrepTime:    req.minPrep,
			MaxPrepTime:    req.maxPrep,
			ExcludedTitles: sortedKeys(seen),
			Count:          need,
		})
		cancel()
		elapsed := time.Since(start)

		attemptLog.Duration = elapsed
		c.metrics.generationAttempts.Add(ctx, 1)
		c.metrics.generationDuration.Record(ctx, elapsed.Seconds())

		if err != nil {
			failures++
			lastErr = err
			attemptLog.Error = err.Error()
			c.metrics.generationFailures.Add(ctx, 1)
			span.RecordError(err, trace.WithAttributes(attribute.Int("attempt", attempt)))
			slog.Warn("COORDINATOR: Generator failed",
				"token", req.token,
				"attempt", attempt,
				"error", err)
			c.logAttempt(attemptLog)
			continue
		}

		attemptLog.Returned = len(recipes)
		for _, r := range recipes {
			if len(out) >= req.want {
				break
			}
			r.Title = strings.TrimSpace(r.Title)
			key := r.Key()
			if _, dup := seen[key]; dup && key != "" {
				attemptLog.Duplicates++
				continue
			}
			if err := c.validator.Validate(r, len(req.pantry)); err != nil {
				attemptLog.Rejected = append(attemptLog.Rejected, r.Title)
				c.metrics.generatedRejected.Add(ctx, 1)
				slog.Debug("COORDINATOR: Generated recipe rejected", "title", r.Title, "error", err)
				continue
			}
			seen[key] = struct{}{}

			accepted, reused := c.accept(ctx, r)
			if reused {
				attemptLog.Reused = append(attemptLog.Reused, accepted.Title)
				c.metrics.generatedReused.Add(ctx, 1)
			} else {
				attemptLog.Accepted = append(attemptLog.Accepted, accepted.Title)
				c.metrics.generatedAccepted.Add(ctx, 1)
			}
			out = append(out, accepted)
		}
		c.metrics.generatedDuplicates.Add(ctx, int64(attemptLog.Duplicates))
		c.logAttempt(attemptLog)
	}

	span.SetAttributes(
		attribute.Int("generate.attempts", attempts),
		attribute.Int("generate.accepted", len(out)),
	)

	if attempts > 0 && failures == attempts {
		span.SetStatus(codes.Error, "every generation attempt failed")
		c.alert(ctx, req, attempts, lastErr)
	}
	return out
}

// accept resolves r against the catalog. A title already in the catalog
// yields the catalog recipe; a Stored one does not count against the quota
// because it keeps its Stored origin.
func (c *Coordinator) accept(ctx context.Context, r recipe.Recipe) (recipe.Recipe, bool) {
	existing, err := c.catalog.FindByTitle(ctx, r.Title)
	if err == nil {
		slog.Info("COORDINATOR: Reusing catalog recipe for generated title",
			"title", existing.Title,
			"origin", existing.Origin)
		return existing, true
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		slog.Warn("COORDINATOR: Catalog lookup failed", "title", r.Title, "error", err)
	}

	r.ID = ""
	r.Origin = recipe.OriginGenerated
	saved, err := c.catalog.Save(ctx, r)
	switch {
	case err == nil:
		return saved, false
	case errors.Is(err, catalog.ErrDuplicateTitle):
		return saved, true
	default:
		slog.Warn("COORDINATOR: Persisting generated recipe failed", "title", r.Title, "error", err)
		// A store that kept the recipe despite the error returns it with its ID.
		if saved.ID != "" {
			return saved, false
		}
		r.ID = uuid.NewString()
		return r, false
	}
}

func (c *Coordinator) logAttempt(entry pantrypilot.GenerationAttemptLog) {
	if err := c.logger.LogAttempt(entry); err != nil {
		slog.Warn("COORDINATOR: Failed to log generation attempt", "error", err)
	}
}

func (c *Coordinator) alert(ctx context.Context, req genRequest, attempts int, lastErr error) {
	msg := fmt.Sprintf(":warning: Recipe generation failed after %d attempts\nsession: %s\nwanted: %d\nerror: %v",
		attempts, tokenOrNew(req.token), req.want, lastErr)
	if err := c.alerter.PostMessage(ctx, c.alertChannel, msg); err != nil {
		slog.Warn("COORDINATOR: Failed to post alert", "error", err)
		return
	}
	c.metrics.alertsPosted.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "generation_failed")))
}

func tokenOrNew(token string) string {
	if token == "" {
		return "new"
	}
	return token
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
