package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"origo/internal/application/models"
	"origo/internal/audit"
	"origo/internal/permission"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/requestcontext"
)

// Transition moves an application to the target status.
//
// The guard runs on the freshly loaded aggregate inside the per-application
// lock, so two racing transitions serialize and the loser is judged against
// the winner's resulting status. Entering a restricted status additionally
// requires the application:approve capability.
func (s *Service) Transition(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, target models.Status, reason, disbursementRef string) (*models.Application, error) {
	start := time.Now()

	if err := s.requireCapability(ctx, actor, permission.CapabilityApplicationWrite, tenantID, applicationID); err != nil {
		return nil, err
	}
	if target.IsRestricted() {
		if err := s.requireCapability(ctx, actor, permission.CapabilityApplicationApprove, tenantID, applicationID); err != nil {
			return nil, err
		}
	}

	var updated *models.Application
	err := s.locker.Do(ctx, applicationID, func(ctx context.Context) error {
		app, err := s.load(ctx, tenantID, applicationID)
		if err != nil {
			return err
		}
		if err := app.CanTransition(target, disbursementRef); err != nil {
			s.incrementDenied("invalid_transition")
			return err
		}
		if err := s.applyTransition(ctx, actor, app, target, reason, disbursementRef); err != nil {
			return err
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementTransition(string(target))
		s.metrics.ObserveTransition(start)
	}
	return updated, nil
}

// TransitionIf moves the application to target only when its current status
// is one of onlyFrom (any status when onlyFrom is empty). An application
// already at target is left untouched. Returns whether a transition happened.
//
// This is the entry point for verification cascades: the triggering
// operation cleared its own capability gate, so no gate runs here, but the
// predecessor table still does.
func (s *Service) TransitionIf(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, target models.Status, reason string, onlyFrom ...models.Status) (bool, error) {
	transitioned := false
	err := s.locker.Do(ctx, applicationID, func(ctx context.Context) error {
		app, err := s.load(ctx, tenantID, applicationID)
		if err != nil {
			return err
		}
		if app.Status == target {
			return nil
		}
		if len(onlyFrom) > 0 && !statusIn(app.Status, onlyFrom) {
			return nil
		}
		if err := app.CanTransition(target, ""); err != nil {
			s.incrementDenied("invalid_transition")
			return err
		}
		if err := s.applyTransition(ctx, actor, app, target, reason, ""); err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if transitioned && s.metrics != nil {
		s.metrics.IncrementTransition(string(target))
	}
	return transitioned, nil
}

// applyTransition persists a guard-approved status change together with its
// timeline entry and audit event. Callers hold the application lock.
func (s *Service) applyTransition(ctx context.Context, actor permission.Actor, app *models.Application, target models.Status, reason, disbursementRef string) error {
	from := app.Status
	app.ApplyTransition(target, disbursementRef, requestcontext.Now(ctx))

	if err := s.apps.Update(ctx, app); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
	}

	payload := map[string]string{
		"from": string(from),
		"to":   string(target),
	}
	if reason != "" {
		payload["reason"] = reason
	}
	if err := s.appendTimeline(ctx, app.ID, models.TimelineAction(target), actor, payload); err != nil {
		return err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      app.TenantID,
		ApplicationID: app.ID,
		EntityType:    audit.EntityApplication,
		EntityID:      app.ID.String(),
		Action:        string(audit.EventStatusChanged),
		OldValue:      string(from),
		NewValue:      string(target),
		Reason:        reason,
	})
	return nil
}

func statusIn(status models.Status, set []models.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// AppendEvent records an annotation on the timeline without touching the
// application's status. It runs outside the per-application lock: the store
// append is atomic, so annotations never queue behind status writes.
func (s *Service) AppendEvent(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, action string, payload map[string]string) (*models.TimelineEntry, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityApplicationWrite, tenantID, applicationID); err != nil {
		return nil, err
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "timeline action is required")
	}
	if _, err := s.load(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}

	entry := &models.TimelineEntry{
		ApplicationID: applicationID,
		Action:        action,
		ActorID:       actor.ID.String(),
		Payload:       payload,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.apps.AppendTimeline(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record timeline entry")
	}
	if s.metrics != nil {
		s.metrics.TimelineAppends.Inc()
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: applicationID,
		EntityType:    audit.EntityApplication,
		EntityID:      applicationID.String(),
		Action:        string(audit.EventTimelineEventRecorded),
		NewValue:      action,
	})
	return entry, nil
}

// CreateCounterOffer replaces the offered terms on an application under
// review. When counter-offer transitions are enabled the application also
// moves to counter_offered.
func (s *Service) CreateCounterOffer(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, amount decimal.Decimal, termMonths int, rate decimal.Decimal, frequency, reason string) (*models.Application, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityCounterOffer, tenantID, applicationID); err != nil {
		return nil, err
	}

	parsed, err := models.ParseFrequency(frequency)
	if err != nil {
		return nil, err
	}
	offer, err := models.NewOffer(amount, termMonths, rate, parsed)
	if err != nil {
		return nil, err
	}

	var updated *models.Application
	err = s.locker.Do(ctx, applicationID, func(ctx context.Context) error {
		app, err := s.load(ctx, tenantID, applicationID)
		if err != nil {
			return err
		}
		if err := app.CanCounterOffer(); err != nil {
			s.incrementDenied("invalid_transition")
			return err
		}

		previous := offerString(app.Terms)
		now := requestcontext.Now(ctx)
		app.ApplyCounterOffer(offer, now)
		if s.counterOfferTransitions {
			app.ApplyTransition(models.StatusCounterOffered, "", now)
		}

		if err := s.apps.Update(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}

		payload := map[string]string{
			"amount":        offer.Amount.StringFixed(2),
			"term_months":   strconv.Itoa(offer.TermMonths),
			"interest_rate": offer.InterestRate.String(),
			"frequency":     string(offer.Frequency),
		}
		if reason != "" {
			payload["reason"] = reason
		}
		if err := s.appendTimeline(ctx, applicationID, models.ActionCounterOfferCreated, actor, payload); err != nil {
			return err
		}

		s.logAudit(ctx, actor, audit.Event{
			TenantID:      tenantID,
			ApplicationID: applicationID,
			EntityType:    audit.EntityApplication,
			EntityID:      applicationID.String(),
			Action:        string(audit.EventCounterOfferCreated),
			OldValue:      previous,
			NewValue:      offerString(app.Terms),
			Reason:        reason,
		})
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterOffers.Inc()
	}
	return updated, nil
}

// AssignReviewer sets or replaces the reviewer on an application.
func (s *Service) AssignReviewer(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, reviewer id.ActorID) (*models.Application, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityApplicationAssign, tenantID, applicationID); err != nil {
		return nil, err
	}
	if reviewer.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer is required")
	}

	var updated *models.Application
	err := s.locker.Do(ctx, applicationID, func(ctx context.Context) error {
		app, err := s.load(ctx, tenantID, applicationID)
		if err != nil {
			return err
		}
		previous := app.AssignedReviewer
		app.ApplyAssignment(reviewer, requestcontext.Now(ctx))

		if err := s.apps.Update(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}

		if err := s.appendTimeline(ctx, applicationID, models.ActionReviewerAssigned, actor, map[string]string{
			"reviewer": reviewer.String(),
		}); err != nil {
			return err
		}

		s.logAudit(ctx, actor, audit.Event{
			TenantID:      tenantID,
			ApplicationID: applicationID,
			EntityType:    audit.EntityApplication,
			EntityID:      applicationID.String(),
			Action:        string(audit.EventReviewerAssigned),
			OldValue:      previous.String(),
			NewValue:      reviewer.String(),
		})
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// offerString renders terms for audit snapshots, e.g.
// "5000.00 over 12 months at 2.5% (monthly)".
func offerString(t models.Terms) string {
	return t.ApprovedAmount.StringFixed(2) + " over " + strconv.Itoa(t.TermMonths) +
		" months at " + t.InterestRate.String() + "% (" + string(t.PaymentFrequency) + ")"
}
