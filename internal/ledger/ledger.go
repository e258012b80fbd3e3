// Package ledger implements the stock-transfer workflow on top of db.Store:
// inventory credits and debits, source reconciliation, allocation
// reservations, the material-issue state machine and delivery challan
// resolution. Every multi-statement mutation runs inside one transaction.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/cache"
	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Metrics receives ledger outcomes. observability.LedgerMetrics implements it.
type Metrics interface {
	Operation(op, outcome string)
	Moved(direction string, qty float64)
}

type nopMetrics struct{}

func (nopMetrics) Operation(string, string) {}
func (nopMetrics) Moved(string, float64)    {}

// Options configures a Service. Only Store is required.
type Options struct {
	Store  db.Store
	Logger *slog.Logger

	// Cache holds master-data lookups; nil disables caching.
	Cache          cache.Cache
	MasterCacheTTL time.Duration

	// Locker serialises allocation writes per key; defaults to an in-process locker.
	Locker cache.Locker

	Metrics Metrics
	Tracer  trace.Tracer

	// SystemActorID stamps created_by/updated_by when the context carries no actor.
	SystemActorID uuid.UUID
}

// Service is the ledger entry point used by the HTTP handlers.
type Service struct {
	store    db.Store
	logger   *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
	locker   cache.Locker
	metrics  Metrics
	tracer   trace.Tracer
	validate *validator.Validate
	system   uuid.UUID
}

func New(opts Options) *Service {
	s := &Service{
		store:    opts.Store,
		logger:   opts.Logger,
		cache:    opts.Cache,
		cacheTTL: opts.MasterCacheTTL,
		locker:   opts.Locker,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		validate: newValidator(),
		system:   opts.SystemActorID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.locker == nil {
		s.locker = cache.NewLocalLocker()
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/ledger")
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 10 * time.Minute
	}
	return s
}

type actorKey struct{}

// WithActor attaches the acting user to ctx; writes stamp it instead of the system actor.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

func (s *Service) actor(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok && id != uuid.Nil {
		return id
	}
	return s.system
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// inTx runs fn in one transaction under a span named after op. Errors come back classified.
func (s *Service) inTx(ctx context.Context, op string, fn func(ctx context.Context, q db.Querier) error) error {
	ctx, span := s.tracer.Start(ctx, "ledger."+op)
	defer span.End()

	err := s.store.ExecTx(ctx, func(q db.Querier) error { return fn(ctx, q) })
	if err != nil {
		err = wrap(op, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
		s.logger.WarnContext(ctx, "ledger transaction rolled back", "op", op, "kind", KindOf(err).String(), "error", err)
	}
	s.record(op, err)
	return err
}

// write wraps a single-statement mutation with the same classification and metrics as inTx.
func (s *Service) write(ctx context.Context, op string, fn func() error) error {
	err := wrap(op, fn())
	if err != nil && KindOf(err) == KindPersistence {
		s.logger.ErrorContext(ctx, "ledger write failed", "op", op, "error", err)
	}
	s.record(op, err)
	return err
}

func (s *Service) record(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	s.metrics.Operation(op, outcome)
}

func (s *Service) moved(direction string, qty decimal.Decimal) {
	s.metrics.Moved(direction, qty.InexactFloat64())
}

func spanAttrs(ctx context.Context, kv ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(kv...)
}
