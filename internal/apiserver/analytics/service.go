package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
)

// Row is one result row keyed by column name
type Row = database.Row

// StatusCancelado marks a cancelled order
const StatusCancelado = "Cancelado"

// QueryObserver records the outcome of every analytics query
type QueryObserver interface {
	ObserveQuery(name string, duration time.Duration, err error)
}

// Service runs the dashboard aggregations
type Service struct {
	db       database.Database
	dialect  Dialect
	logger   *zap.Logger
	observer QueryObserver
	tracer   trace.Tracer
}

// Option customizes a Service
type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithObserver(observer QueryObserver) Option {
	return func(s *Service) { s.observer = observer }
}

// NewService creates a service speaking the dialect of db
func NewService(db database.Database, opts ...Option) (*Service, error) {
	dialect, err := DialectFor(db.Dialect())
	if err != nil {
		return nil, err
	}
	s := &Service{
		db:      db,
		dialect: dialect,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(cnst.TraceAnalytics),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// query is one named statement with the columns to read as numbers
type query struct {
	name    string
	sql     string
	args    []any
	numeric []string
	scope   Scope
}

// fetchAll runs q and returns its normalized rows, never nil
func (s *Service) fetchAll(ctx context.Context, q query) ([]Row, error) {
	ctx, span := s.startSpan(ctx, q)
	defer span.End()

	start := time.Now()
	rows, err := s.db.FetchAll(ctx, q.sql, q.args...)
	s.finish(span, q, start, len(rows), err)
	if err != nil {
		return nil, err
	}
	return normalizeRows(rows, q.numeric), nil
}

// fetchOne runs q and returns its first normalized row, or nil
func (s *Service) fetchOne(ctx context.Context, q query) (Row, error) {
	ctx, span := s.startSpan(ctx, q)
	defer span.End()

	start := time.Now()
	row, err := s.db.FetchOne(ctx, q.sql, q.args...)
	count := 0
	if row != nil {
		count = 1
	}
	s.finish(span, q, start, count, err)
	if err != nil || row == nil {
		return nil, err
	}
	return normalizeRow(row, q.numeric), nil
}

func (s *Service) startSpan(ctx context.Context, q query) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, cnst.SpanQueryPrefix+q.name, trace.WithAttributes(
		attribute.String(cnst.AttrQueryName, q.name),
		attribute.Bool(cnst.AttrUnitScope, q.scope.Scoped()),
	))
}

func (s *Service) finish(span trace.Span, q query, start time.Time, rows int, err error) {
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveQuery(q.name, elapsed, err)
	}
	span.SetAttributes(attribute.Int(cnst.AttrRowCount, rows))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("analytics query failed",
			zap.String("query", q.name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}
	s.logger.Debug("analytics query",
		zap.String("query", q.name),
		zap.Duration("elapsed", elapsed),
		zap.Int("rows", rows))
}
