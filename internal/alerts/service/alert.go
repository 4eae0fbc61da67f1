package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"groupstay/internal/ledger"
	"groupstay/pkg/config"
	"groupstay/pkg/model"
	"groupstay/pkg/telemetry"
)

// AlertService reads and prunes the alert log of an event.
type AlertService interface {
	List(ctx context.Context, scopeID string, limit int) ([]model.Alert, error)
	Dismiss(ctx context.Context, scopeID, alertID string) error
	Clear(ctx context.Context, scopeID string) (int, error)
}

type alertService struct {
	registry *ledger.Registry
	tracer   trace.Tracer
	cfg      *config.Config
}

func NewAlertService(registry *ledger.Registry, cfg *config.Config) AlertService {
	return &alertService{
		registry: registry,
		tracer:   telemetry.Tracer(),
		cfg:      cfg,
	}
}

// List returns the newest alerts first. limit is normalized against the
// configured default.
func (s *alertService) List(ctx context.Context, scopeID string, limit int) ([]model.Alert, error) {
	limit = config.NormalizeAlertLimit(limit, s.cfg.AlertListLimit)

	var alerts []model.Alert
	err := s.registry.View(ctx, scopeID, func(l *ledger.Ledger) error {
		alerts = l.Alerts(limit)
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to list alerts", "scope_id", scopeID, "error", err)
		return nil, ledger.AppError(err, "Failed to fetch alerts")
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, nil
}

func (s *alertService) Dismiss(ctx context.Context, scopeID, alertID string) error {
	ctx, span := s.tracer.Start(ctx, "alerts.Dismiss", trace.WithAttributes(
		attribute.String("scope.id", scopeID),
		attribute.String("alert.id", alertID),
	))
	defer span.End()

	err := s.registry.Update(ctx, scopeID, func(l *ledger.Ledger) error {
		return l.DeleteAlert(alertID)
	})
	if err != nil {
		span.RecordError(err)
		return ledger.AppError(err, "Failed to dismiss alert")
	}
	s.cfg.Log.Info("Alert dismissed", "scope_id", scopeID, "alert_id", alertID)
	return nil
}

func (s *alertService) Clear(ctx context.Context, scopeID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "alerts.Clear", trace.WithAttributes(attribute.String("scope.id", scopeID)))
	defer span.End()

	var cleared int
	err := s.registry.Update(ctx, scopeID, func(l *ledger.Ledger) error {
		cleared = l.ClearAlerts()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, ledger.AppError(err, "Failed to clear alerts")
	}
	s.cfg.Log.Info("Alerts cleared", "scope_id", scopeID, "count", cleared)
	return cleared, nil
}
