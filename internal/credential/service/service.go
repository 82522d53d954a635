package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vouch/internal/credential/metrics"
	"vouch/internal/credential/models"
	"vouch/internal/credential/store"
	"vouch/internal/platform/tracer"
	dErrors "vouch/pkg/domain-errors"
)

// Option configures the credential service.
type Option func(*Service)

// Service implements the credential lifecycle: issuance assigns an identity
// and stores a record exactly once, verification is a pure read. Every call
// round-trips through the store; the service holds no record state between
// requests.
type Service struct {
	store   store.Store
	worker  string
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// New creates a credential service. worker identifies this service instance
// and is recorded on every issued credential for audit traceability.
func New(st store.Store, worker string, opts ...Option) *Service {
	svc := &Service{
		store:  st,
		worker: worker,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics configures credential metrics for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer configures a tracer for the service.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// Issue persists a new credential record and returns it. If the document
// carries no "id" field, a fresh globally-unique identifier is generated and
// merged into it. Repeated issuance for the same ID never creates a second
// record or alters the first: the store's insert-or-fail gate orders
// concurrent attempts, and all losers observe a conflict.
func (s *Service) Issue(ctx context.Context, doc models.Document) (record *models.Record, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue)
	defer func() { span.End(err) }()

	if err = doc.Validate(); err != nil {
		return nil, err
	}
	if s.store == nil {
		err = dErrors.New(dErrors.CodeInternal, "credential store unavailable")
		return nil, err
	}

	id, supplied := doc.ID()
	if !supplied {
		id = models.NewCredentialID()
	}
	span.SetAttributes(
		tracer.String(tracer.AttrCredentialID, id),
		tracer.Bool(tracer.AttrIDGenerated, !supplied),
	)

	// Fast-path duplicate check. The store's uniqueness constraint closes
	// the race between this check and the insert below.
	exists, storeErr := s.store.Exists(ctx, id)
	if storeErr != nil {
		s.countFailure()
		err = dErrors.Wrap(storeErr, dErrors.CodeInternal, "failed to check credential id")
		return nil, err
	}
	if exists {
		s.countConflict()
		err = dErrors.New(dErrors.CodeConflict, "credential already issued for this id")
		return nil, err
	}

	rec := models.Record{
		ID:         id,
		Credential: doc.WithID(id),
		Worker:     s.worker,
		IssuedAt:   time.Now().UTC(),
	}

	if storeErr := s.store.Save(ctx, rec); storeErr != nil {
		if errors.Is(storeErr, store.ErrConflict) {
			s.countConflict()
			err = dErrors.New(dErrors.CodeConflict, "credential already issued for this id")
			return nil, err
		}
		s.countFailure()
		err = dErrors.Wrap(storeErr, dErrors.CodeInternal, "failed to store credential")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
		s.metrics.IssueLatency.Observe(time.Since(start).Seconds())
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential issued",
			"credential_id", rec.ID,
			"worker", rec.Worker,
			"id_generated", !supplied,
		)
	}

	return &rec, nil
}

// Verify looks up a credential by ID and reports its status. An unknown ID is
// a normal outcome, not an error. Verify never mutates storage.
func (s *Service) Verify(ctx context.Context, id string) (result *models.VerifyResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrCredentialID, id),
	)
	defer func() { span.End(err) }()

	if id == "" {
		err = dErrors.New(dErrors.CodeValidation, "id is required")
		return nil, err
	}
	if s.store == nil {
		err = dErrors.New(dErrors.CodeInternal, "credential store unavailable")
		return nil, err
	}

	rec, storeErr := s.store.Get(ctx, id)
	if storeErr != nil {
		if errors.Is(storeErr, store.ErrNotFound) {
			s.countVerification(models.StatusInvalid, start)
			span.SetAttributes(tracer.String(tracer.AttrStatus, models.StatusInvalid))
			return &models.VerifyResult{
				Status: models.StatusInvalid,
				Reason: models.ReasonNotFound,
			}, nil
		}
		err = dErrors.Wrap(storeErr, dErrors.CodeInternal, "failed to look up credential")
		return nil, err
	}

	s.countVerification(models.StatusValid, start)
	span.SetAttributes(tracer.String(tracer.AttrStatus, models.StatusValid))

	return &models.VerifyResult{
		Status: models.StatusValid,
		Record: &rec,
	}, nil
}

// ListIDs returns every stored credential ID. Diagnostic capability only, not
// part of the credential lifecycle contract.
func (s *Service) ListIDs(ctx context.Context) (ids []string, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList)
	defer func() { span.End(err) }()

	if s.store == nil {
		err = dErrors.New(dErrors.CodeInternal, "credential store unavailable")
		return nil, err
	}

	ids, storeErr := s.store.ListIDs(ctx)
	if storeErr != nil {
		err = dErrors.Wrap(storeErr, dErrors.CodeInternal, "failed to list credentials")
		return nil, err
	}
	return ids, nil
}

func (s *Service) countConflict() {
	if s.metrics != nil {
		s.metrics.IssueConflicts.Inc()
	}
}

func (s *Service) countFailure() {
	if s.metrics != nil {
		s.metrics.IssueFailures.Inc()
	}
}

func (s *Service) countVerification(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.Verifications.WithLabelValues(status).Inc()
		s.metrics.VerifyLatency.Observe(time.Since(start).Seconds())
	}
}
