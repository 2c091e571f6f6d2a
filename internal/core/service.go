// Package core implements the ledger entry operations: ownership and
// transfer, delegation, roles, and the attribute stores, each gated by the
// layered authorization predicates and executed all-or-nothing against a
// persistent store.
package core

import (
	"context"
	"time"

	"assetledger/pkg/domain"
)

type (
	// Transaction aliases the domain transaction contract for callers of this package.
	Transaction = domain.Transaction
	// TransactionView aliases the domain read-view contract.
	TransactionView = domain.TransactionView
	// PersistentStore aliases the domain storage contract.
	PersistentStore = domain.PersistentStore
)

// Logger is the minimal structured logging surface the service emits to.
// *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan terminates a trace started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// Service exposes the ledger entry operations over a persistent store. The
// administrator account is fixed at construction and grants override
// authority independent of the role map.
type Service struct {
	store   PersistentStore
	admin   domain.AccountID
	sink    domain.EventSink
	metrics MetricsRecorder
	tracer  Tracer
	logger  Logger
}

// Option customizes service construction.
type Option func(*Service)

// WithEventSink delivers committed events to the sink, one per successful
// mutating call.
func WithEventSink(sink domain.EventSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithMetricsRecorder records operation outcomes.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer wraps each operation in a span.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithLogger routes service logs to the supplied logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a service over the supplied store. The admin account
// is the configured super-administrator; it may be zero, in which case only
// accounts holding the Administrator role pass the admin gate.
func NewService(store PersistentStore, admin domain.AccountID, opts ...Option) *Service {
	s := &Service{
		store:  store,
		admin:  admin,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Admin returns the configured super-administrator account.
func (s *Service) Admin() domain.AccountID { return s.admin }

// run executes a mutating operation inside a transaction, records
// observability signals, and delivers staged events after commit.
func (s *Service) run(ctx context.Context, operation string, fn func(Transaction) error) error {
	started := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	events, err := s.store.RunInTransaction(ctx, fn)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	}
	if err != nil {
		s.logger.Debug("ledger operation rejected", "operation", operation, "error", err)
		return err
	}
	if s.sink != nil {
		for _, ev := range events {
			s.sink.Record(ctx, ev)
		}
	}
	s.logger.Debug("ledger operation committed", "operation", operation, "events", len(events))
	return nil
}

// isAdministrator reports whether the caller is the configured
// super-administrator or holds the Administrator role.
func (s *Service) isAdministrator(v TransactionView, caller domain.AccountID) bool {
	if caller.IsZero() {
		return false
	}
	if caller == s.admin {
		return true
	}
	role, ok := v.RoleOf(caller)
	return ok && role == domain.RoleAdministrator
}

// approvedOrOwner reports whether the caller may act on the asset on the
// owner's behalf: owner, single-asset delegate, or blanket-approved operator.
func approvedOrOwner(v TransactionView, caller, owner domain.AccountID, id domain.AssetID) bool {
	if caller.IsZero() {
		return false
	}
	if caller == owner {
		return true
	}
	if delegate, ok := v.DelegateOf(id); ok && delegate == caller {
		return true
	}
	return v.BlanketApproved(owner, caller)
}

// hasRole reports whether the caller holds exactly the given role. Absent
// roles never match.
func hasRole(v TransactionView, caller domain.AccountID, role domain.Role) bool {
	got, ok := v.RoleOf(caller)
	return ok && got == role
}
