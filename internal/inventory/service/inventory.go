package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"groupstay/internal/inventory/validator"
	"groupstay/internal/ledger"
	"groupstay/pkg/config"
	apperrors "groupstay/pkg/errors"
	"groupstay/pkg/eventbus"
	"groupstay/pkg/metrics"
	"groupstay/pkg/model"
	"groupstay/pkg/sanitizer"
	"groupstay/pkg/telemetry"
)

type InventoryService interface {
	CreateEvent(ctx context.Context, scope *model.Scope) (model.Scope, error)
	GetEvent(ctx context.Context, eventID string) (model.Scope, error)
	ListEvents(ctx context.Context) ([]model.Scope, error)
	DeleteEvent(ctx context.Context, eventID string) error

	CreatePool(ctx context.Context, eventID string, in *model.PoolInput) (model.Pool, error)
	GetPool(ctx context.Context, eventID, poolID string) (model.Pool, error)
	ListPools(ctx context.Context, eventID, kind string, onlyAvailable bool) ([]model.Pool, error)
	DeletePool(ctx context.Context, eventID, poolID string) error
	ApplyDelta(ctx context.Context, eventID, poolID string, in *model.AllocationInput) (model.AllocationResult, error)

	AvailabilityAlerts(ctx context.Context, eventID string) ([]model.Alert, error)
	Summary(ctx context.Context, eventID string) (map[model.Kind]model.KindSummary, error)
	Occupancy(ctx context.Context, eventID string) (map[model.Kind]int, error)
	Export(ctx context.Context, eventID string) (filename string, body string, err error)
	ImportPools(ctx context.Context, eventID string, r io.Reader) ([]model.Pool, error)
}

type inventoryService struct {
	registry  *ledger.Registry
	validator *validator.InventoryValidator
	bus       *eventbus.Bus
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	cfg       *config.Config
	now       func() time.Time
}

func NewInventoryService(
	registry *ledger.Registry,
	validator *validator.InventoryValidator,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	cfg *config.Config,
) InventoryService {
	return &inventoryService{
		registry:  registry,
		validator: validator,
		bus:       bus,
		metrics:   m,
		tracer:    telemetry.Tracer(),
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *inventoryService) CreateEvent(ctx context.Context, scope *model.Scope) (model.Scope, error) {
	scope.ID = strings.TrimSpace(scope.ID)
	scope.Name = sanitizer.TrimAndNormalize(scope.Name)
	scope.Date = strings.TrimSpace(scope.Date)

	if err := s.validator.ValidateScope(scope); err != nil {
		s.cfg.Log.Warn("Event validation failed", "event_id", scope.ID, "error", err)
		return model.Scope{}, validationError("Event validation failed", err)
	}

	ctx, span := s.tracer.Start(ctx, "inventory.CreateEvent", trace.WithAttributes(attribute.String("event.id", scope.ID)))
	defer span.End()

	created, err := s.registry.Create(ctx, *scope)
	if err != nil {
		fail(span, err)
		if !errors.Is(err, ledger.ErrScopeExists) {
			s.cfg.Log.Error("Failed to create event", "event_id", scope.ID, "error", err)
		}
		return model.Scope{}, ledger.AppError(err, "Failed to create event")
	}

	s.cfg.Log.Info("Event created", "event_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *inventoryService) GetEvent(ctx context.Context, eventID string) (model.Scope, error) {
	var scope model.Scope
	err := s.registry.View(ctx, eventID, func(l *ledger.Ledger) error {
		scope = l.Scope()
		return nil
	})
	if err != nil {
		return model.Scope{}, ledger.AppError(err, "Failed to retrieve event")
	}
	return scope, nil
}

func (s *inventoryService) ListEvents(ctx context.Context) ([]model.Scope, error) {
	scopes, err := s.registry.Scopes(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list events", "error", err)
		return nil, ledger.AppError(err, "Failed to retrieve events")
	}
	return scopes, nil
}

func (s *inventoryService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := s.tracer.Start(ctx, "inventory.DeleteEvent", trace.WithAttributes(attribute.String("event.id", eventID)))
	defer span.End()

	if err := s.registry.Delete(ctx, eventID); err != nil {
		fail(span, err)
		return ledger.AppError(err, "Failed to delete event")
	}
	s.metrics.ForgetEvent(eventID)
	s.cfg.Log.Info("Event deleted", "event_id", eventID)
	return nil
}

func (s *inventoryService) CreatePool(ctx context.Context, eventID string, in *model.PoolInput) (model.Pool, error) {
	in.Label = sanitizer.TrimAndNormalize(in.Label)
	if err := s.validator.ValidatePool(in); err != nil {
		s.cfg.Log.Warn("Pool validation failed", "event_id", eventID, "kind", in.Kind, "error", err)
		return model.Pool{}, validationError("Pool validation failed", err)
	}
	kind, _ := model.ParseKind(in.Kind)

	ctx, span := s.tracer.Start(ctx, "inventory.CreatePool", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("pool.kind", string(kind)),
	))
	defer span.End()

	var (
		pool  model.Pool
		pools []model.Pool
	)
	err := s.registry.Update(ctx, eventID, func(l *ledger.Ledger) error {
		var err error
		pool, err = l.CreatePool(kind, *in.Capacity, in.Label, in.Attributes)
		pools = l.ListPools("")
		return err
	})
	if err != nil {
		fail(span, err)
		s.cfg.Log.Warn("Failed to create pool", "event_id", eventID, "kind", kind, "error", err)
		return model.Pool{}, ledger.AppError(err, "Failed to create pool")
	}

	s.recordOccupancy(eventID, pools)
	s.cfg.Log.Info("Pool created",
		"event_id", eventID,
		"pool_id", pool.ID,
		"kind", pool.Kind,
		"label", pool.Label,
		"capacity", pool.Capacity,
	)
	return pool, nil
}

func (s *inventoryService) GetPool(ctx context.Context, eventID, poolID string) (model.Pool, error) {
	var pool model.Pool
	err := s.registry.View(ctx, eventID, func(l *ledger.Ledger) error {
		var err error
		pool, err = l.GetPool(poolID)
		return err
	})
	if err != nil {
		return model.Pool{}, ledger.AppError(err, "Failed to retrieve pool")
	}
	return pool, nil
}

func (s *inventoryService) ListPools(ctx context.Context, eventID, kind string, onlyAvailable bool) ([]model.Pool, error) {
	var k model.Kind
	if kind != "" {
		parsed, ok := model.ParseKind(kind)
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid kind parameter: %s", kind))
		}
		k = parsed
	}

	var pools []model.Pool
	err := s.registry.View(ctx, eventID, func(l *ledger.Ledger) error {
		if onlyAvailable {
			pools = l.ListAvailable(k)
		} else {
			pools = l.ListPools(k)
		}
		return nil
	})
	if err != nil {
		return nil, ledger.AppError(err, "Failed to retrieve pools")
	}
	return pools, nil
}

func (s *inventoryService) DeletePool(ctx context.Context, eventID, poolID string) error {
	ctx, span := s.tracer.Start(ctx, "inventory.DeletePool", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("pool.id", poolID),
	))
	defer span.End()

	var pools []model.Pool
	err := s.registry.Update(ctx, eventID, func(l *ledger.Ledger) error {
		if err := l.DeletePool(poolID); err != nil {
			return err
		}
		pools = l.ListPools("")
		return nil
	})
	if err != nil {
		fail(span, err)
		return ledger.AppError(err, "Failed to delete pool")
	}

	s.recordOccupancy(eventID, pools)
	s.cfg.Log.Info("Pool deleted", "event_id", eventID, "pool_id", poolID)
	return nil
}

// ApplyDelta books (negative delta) or releases (positive delta) units of
// one pool. The pool's capacity alerts are recorded in the same update and
// published once it is committed.
func (s *inventoryService) ApplyDelta(ctx context.Context, eventID, poolID string, in *model.AllocationInput) (model.AllocationResult, error) {
	if err := s.validator.ValidateAllocation(in); err != nil {
		return model.AllocationResult{}, validationError("Allocation validation failed", err)
	}
	delta := *in.Delta

	ctx, span := s.tracer.Start(ctx, "inventory.ApplyDelta", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("pool.id", poolID),
		attribute.Int("allocation.delta", delta),
	))
	defer span.End()

	var (
		kind   model.Kind
		result model.AllocationResult
		pools  []model.Pool
	)
	err := s.registry.Update(ctx, eventID, func(l *ledger.Ledger) error {
		current, err := l.GetPool(poolID)
		if err != nil {
			return err
		}
		kind = current.Kind

		event, pool, err := l.ApplyDelta(poolID, delta)
		if err != nil {
			return err
		}
		result.Event = event
		result.Pool = pool
		result.Alerts = l.RecordAlerts(ledger.Evaluate([]model.Pool{pool})...)
		pools = l.ListPools("")
		return nil
	})
	if err != nil {
		fail(span, err)
		if errors.Is(err, ledger.ErrOverAllocation) {
			s.metrics.ObserveAllocation(string(kind), metrics.ResultRejected)
			s.cfg.Log.Warn("Allocation rejected", "event_id", eventID, "pool_id", poolID, "delta", delta, "error", err)
		} else if kind != "" {
			s.metrics.ObserveAllocation(string(kind), metrics.ResultFailed)
			s.cfg.Log.Error("Allocation failed", "event_id", eventID, "pool_id", poolID, "delta", delta, "error", err)
		}
		return model.AllocationResult{}, ledger.AppError(err, "Failed to apply allocation")
	}

	if result.Alerts == nil {
		result.Alerts = []model.Alert{}
	}
	span.SetAttributes(attribute.Int("pool.available", result.Pool.Available), attribute.Int("alerts", len(result.Alerts)))
	s.metrics.ObserveAllocation(string(kind), metrics.ResultAccepted)
	s.recordOccupancy(eventID, pools)

	s.bus.Publish(ctx, eventbus.Event{
		Topic:      eventbus.TopicAllocationApplied,
		ScopeID:    eventID,
		Payload:    result.Event,
		OccurredAt: result.Event.Timestamp,
	})
	for _, alert := range result.Alerts {
		s.bus.Publish(ctx, eventbus.Event{
			Topic:      eventbus.TopicAlertRaised,
			ScopeID:    eventID,
			Payload:    alert,
			OccurredAt: alert.CreatedAt,
		})
	}

	s.cfg.Log.Info("Allocation applied",
		"event_id", eventID,
		"pool_id", poolID,
		"delta", delta,
		"available", result.Pool.Available,
		"alerts", len(result.Alerts),
	)
	return result, nil
}

// AvailabilityAlerts evaluates every pool of the event without recording
// anything.
func (s *inventoryService) AvailabilityAlerts(ctx context.Context, eventID string) ([]model.Alert, error) {
	var alerts []model.Alert
	err := s.registry.View(ctx, eventID, func(l *ledger.Ledger) error {
		alerts = ledger.Evaluate(l.ListPools(""))
		return nil
	})
	if err != nil {
		return nil, ledger.AppError(err, "Failed to evaluate availability")
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, nil
}

func (s *inventoryService) Summary(ctx context.Context, eventID string) (map[model.Kind]model.KindSummary, error) {
	pools, err := s.ListPools(ctx, eventID, "", false)
	if err != nil {
		return nil, err
	}
	return ledger.Summarize(pools), nil
}

func (s *inventoryService) Occupancy(ctx context.Context, eventID string) (map[model.Kind]int, error) {
	pools, err := s.ListPools(ctx, eventID, "", false)
	if err != nil {
		return nil, err
	}
	return ledger.OccupancyRates(pools), nil
}

func (s *inventoryService) Export(ctx context.Context, eventID string) (string, string, error) {
	var body string
	err := s.registry.View(ctx, eventID, func(l *ledger.Ledger) error {
		var err error
		body, err = ledger.ToDelimitedText(l.Scope(), l.ListPools(""), s.now())
		return err
	})
	if err != nil {
		return "", "", ledger.AppError(err, "Failed to export inventory")
	}
	return fmt.Sprintf("inventory-%s.csv", eventID), body, nil
}

// ImportPools creates one pool per row of an exported report, keeping the
// used counts. Either every row is imported or none is.
func (s *inventoryService) ImportPools(ctx context.Context, eventID string, r io.Reader) ([]model.Pool, error) {
	rows, err := ledger.ParseDelimitedText(r)
	if err != nil {
		s.cfg.Log.Warn("Inventory import rejected", "event_id", eventID, "error", err)
		return nil, ledger.AppError(err, "Failed to parse inventory report")
	}

	ctx, span := s.tracer.Start(ctx, "inventory.ImportPools", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.Int("rows", len(rows)),
	))
	defer span.End()

	created := make([]model.Pool, 0, len(rows))
	var pools []model.Pool
	err = s.registry.Update(ctx, eventID, func(l *ledger.Ledger) error {
		for _, row := range rows {
			p, err := l.CreatePoolWithUsage(row.Kind, row.Capacity, row.Used, sanitizer.TrimAndNormalize(row.Label), nil)
			if err != nil {
				return err
			}
			created = append(created, p)
		}
		pools = l.ListPools("")
		return nil
	})
	if err != nil {
		fail(span, err)
		return nil, ledger.AppError(err, "Failed to import inventory")
	}

	s.recordOccupancy(eventID, pools)
	s.cfg.Log.Info("Inventory imported", "event_id", eventID, "pools", len(created))
	return created, nil
}

func (s *inventoryService) recordOccupancy(eventID string, pools []model.Pool) {
	for kind, sum := range ledger.Summarize(pools) {
		ratio := 0.0
		if sum.Total > 0 {
			ratio = float64(sum.Used) / float64(sum.Total)
		}
		s.metrics.SetOccupancy(eventID, string(kind), ratio)
	}
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
