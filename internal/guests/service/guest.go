package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"groupstay/internal/guests/validator"
	"groupstay/internal/ledger"
	"groupstay/pkg/config"
	apperrors "groupstay/pkg/errors"
	"groupstay/pkg/eventbus"
	"groupstay/pkg/model"
	"groupstay/pkg/sanitizer"
	"groupstay/pkg/telemetry"
)

const msgNameRequired = "Guest name is required"

// GuestService manages the guest list of the configured default event.
type GuestService interface {
	List(ctx context.Context) ([]model.Guest, error)
	Get(ctx context.Context, id int64) (model.Guest, error)
	Save(ctx context.Context, g *model.Guest) (saved model.Guest, created bool, alert model.Alert, err error)
	Delete(ctx context.Context, id int64) (model.Alert, error)

	DietarySummary(ctx context.Context) (map[string]int, error)
	SpecialNeedsSummary(ctx context.Context) (model.SpecialNeedsSummary, error)
	Report(ctx context.Context) (model.GuestReport, error)
	ExportCSV(ctx context.Context) (filename string, body string, err error)
}

type guestService struct {
	registry  *ledger.Registry
	validator *validator.GuestValidator
	bus       *eventbus.Bus
	tracer    trace.Tracer
	cfg       *config.Config
	scopeID   string
	now       func() time.Time
}

func NewGuestService(
	registry *ledger.Registry,
	validator *validator.GuestValidator,
	bus *eventbus.Bus,
	cfg *config.Config,
) GuestService {
	return &guestService{
		registry:  registry,
		validator: validator,
		bus:       bus,
		tracer:    telemetry.Tracer(),
		cfg:       cfg,
		scopeID:   cfg.DefaultScope,
		now:       time.Now,
	}
}

func (s *guestService) List(ctx context.Context) ([]model.Guest, error) {
	var guests []model.Guest
	err := s.registry.View(ctx, s.scopeID, func(l *ledger.Ledger) error {
		guests = l.Guests()
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to list guests", "scope_id", s.scopeID, "error", err)
		return nil, ledger.AppError(err, "Failed to fetch guests")
	}
	if guests == nil {
		guests = []model.Guest{}
	}
	return guests, nil
}

func (s *guestService) Get(ctx context.Context, id int64) (model.Guest, error) {
	var g model.Guest
	err := s.registry.View(ctx, s.scopeID, func(l *ledger.Ledger) error {
		var err error
		g, err = l.GetGuest(id)
		return err
	})
	if err != nil {
		return model.Guest{}, ledger.AppError(err, "Failed to fetch guest")
	}
	return g, nil
}

// Save creates the guest when its id is zero or unknown and replaces the
// stored profile otherwise.
func (s *guestService) Save(ctx context.Context, g *model.Guest) (model.Guest, bool, model.Alert, error) {
	s.sanitize(g)
	if err := s.validator.Validate(g); err != nil {
		s.cfg.Log.Warn("Guest validation failed", "guest_id", g.ID, "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg := "Guest validation failed"
			if verrs.Has("name") {
				msg = msgNameRequired
			}
			return model.Guest{}, false, model.Alert{}, apperrors.Validation(msg, verrs.Details())
		}
		return model.Guest{}, false, model.Alert{}, apperrors.Validation("Guest validation failed", map[string]any{"error": err.Error()})
	}

	ctx, span := s.tracer.Start(ctx, "guests.Save", trace.WithAttributes(attribute.Int64("guest.id", g.ID)))
	defer span.End()

	var (
		saved   model.Guest
		created bool
		alert   model.Alert
	)
	err := s.registry.Update(ctx, s.scopeID, func(l *ledger.Ledger) error {
		var err error
		saved, created, alert, err = l.UpsertGuest(*g)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.cfg.Log.Error("Failed to save guest", "guest_id", g.ID, "error", err)
		return model.Guest{}, false, model.Alert{}, ledger.AppError(err, "Failed to save guest")
	}

	s.publish(ctx, eventbus.TopicGuestSaved, saved, alert)
	s.cfg.Log.Info("Guest saved", "guest_id", saved.ID, "created", created)
	return saved, created, alert, nil
}

func (s *guestService) Delete(ctx context.Context, id int64) (model.Alert, error) {
	ctx, span := s.tracer.Start(ctx, "guests.Delete", trace.WithAttributes(attribute.Int64("guest.id", id)))
	defer span.End()

	var (
		removed model.Guest
		alert   model.Alert
	)
	err := s.registry.Update(ctx, s.scopeID, func(l *ledger.Ledger) error {
		var err error
		removed, alert, err = l.DeleteGuest(id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.Alert{}, ledger.AppError(err, "Failed to delete guest")
	}

	s.publish(ctx, eventbus.TopicGuestRemoved, removed, alert)
	s.cfg.Log.Info("Guest deleted", "guest_id", id)
	return alert, nil
}

func (s *guestService) publish(ctx context.Context, topic eventbus.Topic, g model.Guest, alert model.Alert) {
	s.bus.Publish(ctx, eventbus.Event{Topic: topic, ScopeID: s.scopeID, Payload: g})
	s.bus.Publish(ctx, eventbus.Event{Topic: eventbus.TopicAlertRaised, ScopeID: s.scopeID, Payload: alert, OccurredAt: alert.CreatedAt})
}

func (s *guestService) DietarySummary(ctx context.Context) (map[string]int, error) {
	guests, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DietarySummary(guests), nil
}

func (s *guestService) SpecialNeedsSummary(ctx context.Context) (model.SpecialNeedsSummary, error) {
	guests, err := s.List(ctx)
	if err != nil {
		return model.SpecialNeedsSummary{}, err
	}
	return ledger.SpecialNeeds(guests), nil
}

func (s *guestService) Report(ctx context.Context) (model.GuestReport, error) {
	guests, err := s.List(ctx)
	if err != nil {
		return model.GuestReport{}, err
	}
	return ledger.GuestReport(guests, s.now().UTC()), nil
}

func (s *guestService) ExportCSV(ctx context.Context) (string, string, error) {
	guests, err := s.List(ctx)
	if err != nil {
		return "", "", err
	}
	body, err := ledger.GuestsCSV(guests)
	if err != nil {
		return "", "", apperrors.Internal("Failed to export guests", err)
	}
	return fmt.Sprintf("guests-%s.csv", s.now().UTC().Format("2006-01-02")), body, nil
}

func (s *guestService) sanitize(g *model.Guest) {
	g.Name = sanitizer.NormalizeName(g.Name)
	g.Email = sanitizer.NormalizeEmail(g.Email)
	g.Phone = sanitizer.NormalizePhone(g.Phone)
	g.RoomPreference = sanitizer.TrimAndNormalize(g.RoomPreference)
	g.DietaryRequirements = sanitizer.NormalizeTags(g.DietaryRequirements)
	g.SpecialNeeds = sanitizer.NormalizeTags(g.SpecialNeeds)
	g.Notes = sanitizer.NormalizeNote(g.Notes)
}
