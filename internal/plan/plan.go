// Package plan is the boundary between callers holding change requests and
// the dialect generators. It renders batches of requests into migrations,
// records what a dialect cannot express and aligns many-to-many relations
// before they are compared.
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"schemaddl/internal/core"
	"schemaddl/internal/dialect"
	"schemaddl/internal/diff"
	"schemaddl/internal/metrics"
	"schemaddl/internal/migration"
)

// Verifier checks rendered statements, e.g. by parsing them.
type Verifier interface {
	Verify(statements []string) error
}

// Advisor is implemented by verifiers that can also warn about the effect of
// statements, such as table locks or data loss. Each advice becomes a note.
type Advisor interface {
	Advise(statements []string) []string
}

type Option func(*Renderer)

// WithLogger sets the logger. A nil logger is replaced by a no-op one.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics makes the renderer count statements, failures and alignments.
func WithMetrics(s *metrics.Store) Option {
	return func(r *Renderer) {
		r.metrics = s
	}
}

// WithVerifier runs v over the statements of every rendered migration.
func WithVerifier(v Verifier) Option {
	return func(r *Renderer) {
		r.verifier = v
	}
}

// Renderer renders change requests for the dialect of its generator. It is
// safe for concurrent use.
type Renderer struct {
	gen      *dialect.Generator
	log      *zap.Logger
	metrics  *metrics.Store
	verifier Verifier
}

func NewRenderer(gen *dialect.Generator, opts ...Option) *Renderer {
	r := &Renderer{
		gen: gen,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(zap.String("dialect", string(gen.Dialect())))
	return r
}

// Dialect returns the dialect statements are rendered for.
func (r *Renderer) Dialect() core.Dialect {
	return r.gen.Dialect()
}

// Render renders changes in order. A change that cannot be rendered becomes
// an UNRESOLVED step and rendering continues with the next one. The returned
// error combines every failure; the migration is returned even when it is
// not nil.
func (r *Renderer) Render(changes []core.ChangeRequest) (*migration.Migration, error) {
	m := migration.New(r.gen.Dialect())
	var errs error

	for i, change := range changes {
		if change == nil {
			errs = multierr.Append(errs, fmt.Errorf("changes[%d]: %w", i, dialect.ErrInvalidRequest))
			continue
		}
		op := change.Op()

		stmt, err := r.gen.Generate(change)
		if err != nil {
			r.recordFailure(op, err)
			m.AddUnresolved(op, err.Error())
			errs = multierr.Append(errs, fmt.Errorf("changes[%d]: %w", i, err))
			continue
		}

		r.log.Debug("Rendered statement", zap.Stringer("operation", op), zap.String("sql", stmt))
		if r.metrics != nil {
			r.metrics.StatementsTotal.WithLabelValues(string(r.gen.Dialect()), op.String()).Inc()
		}
		m.AddStatement(op, stmt)
	}

	if r.verifier != nil {
		stmts := m.SQLStatements()
		if err := r.verifier.Verify(stmts); err != nil {
			r.log.Error("Rendered statements failed verification", zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("verify: %w", err))
		}
		if a, ok := r.verifier.(Advisor); ok {
			for _, note := range a.Advise(stmts) {
				m.AddNote(note)
			}
		}
	}

	m.Dedupe()
	return m, errs
}

func (r *Renderer) recordFailure(op core.Operation, err error) {
	d := string(r.gen.Dialect())
	if errors.Is(err, dialect.ErrUnsupportedOperation) {
		r.log.Warn("Operation is not supported by dialect", zap.Stringer("operation", op))
		if r.metrics != nil {
			r.metrics.UnsupportedTotal.WithLabelValues(d, op.String()).Inc()
		}
		return
	}
	r.log.Warn("Failed to render change", zap.Stringer("operation", op), zap.Error(err))
	if r.metrics != nil {
		r.metrics.RenderErrorsTotal.WithLabelValues(d, op.String()).Inc()
	}
}

// RenderBatches renders independent batches with at most workers running at
// once. Results keep the order of batches. A batch whose rendering failed
// still has its migration in the result; a batch that never started because
// ctx was cancelled has nil. The error combines every batch failure and the
// context error, if any.
func (r *Renderer) RenderBatches(ctx context.Context, batches [][]core.ChangeRequest, workers int) ([]*migration.Migration, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]*migration.Migration, len(batches))
	batchErrs := make([]error, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			m, err := r.Render(batch)
			if r.metrics != nil {
				r.metrics.BatchDurationSeconds.WithLabelValues(string(r.gen.Dialect())).Observe(time.Since(start).Seconds())
			}
			results[i] = m
			if err != nil {
				batchErrs[i] = fmt.Errorf("batch %d: %w", i, err)
			}
			r.log.Debug("Rendered batch", zap.Int("batch", i), zap.Int("steps", len(m.Steps)))
			return nil
		})
	}

	errs := g.Wait()
	if errs == nil {
		errs = ctx.Err()
	}
	return results, multierr.Combine(append([]error{errs}, batchErrs...)...)
}

// Align reorders copies of two relation lists so their positions correspond
// and counts the rule that applied.
func (r *Renderer) Align(oldRelations, newRelations []*core.M2MRelation) diff.Alignment {
	a := diff.AlignM2M(oldRelations, newRelations)
	r.log.Debug("Aligned many-to-many relations",
		zap.Stringer("rule", a.Rule),
		zap.Int("old", len(oldRelations)),
		zap.Int("new", len(newRelations)),
		zap.Bool("changed", a.Changed(oldRelations, newRelations)),
	)
	if r.metrics != nil {
		r.metrics.AlignmentsTotal.WithLabelValues(a.Rule.String()).Inc()
	}
	return a
}
