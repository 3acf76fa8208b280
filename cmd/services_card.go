package cmd

import (
	"context"
	"fmt"
)

// CardActionKind discriminates the outcome of activating a service card.
type CardActionKind int

const (
	// ActionNavigate means navigation to the card's redirect path proceeds.
	ActionNavigate CardActionKind = iota
	// ActionOpenWarning means the activation was intercepted and the
	// not-accessible warning should be shown instead.
	ActionOpenWarning
)

// CardAction is the single decision value produced by a card activation:
// either a navigation intent or an open-warning intent, never both.
type CardAction struct {
	Kind CardActionKind
	Path string // set when Kind == ActionNavigate
}

// CardController drives a single service card: it composes the status
// classifier and the accessibility gate to decide where activation leads,
// owns the warning affordance flag, and requests cache refreshes through
// the injected store handle.
type CardController struct {
	svc   Service
	store Store

	warningOpen bool
}

// NewCardController builds a controller for one service backed by the given store.
func NewCardController(svc Service, store Store) *CardController {
	return &CardController{svc: svc, store: store}
}

// Service returns the service record this card renders.
func (c *CardController) Service() Service { return c.svc }

// Status classifies the card's service.
func (c *CardController) Status() ServiceStatus { return GetStatus(c.svc) }

// RedirectPath computes the navigation target for this card. Coming-soon
// services point back at the dashboard root; everything else goes to the
// detail view for the service's type.
func (c *CardController) RedirectPath() string {
	if c.Status() == StatusComingSoon {
		return "/"
	}
	return fmt.Sprintf("/services/%s/%s/detail", c.svc.ID, c.svc.Type())
}

// Activate decides what a card activation does. Accessibility is computed
// first; an inaccessible service yields an open-warning action (and flips
// the warning flag) instead of navigation.
func (c *CardController) Activate() CardAction {
	if !IsAccessible(c.Status()) {
		c.warningOpen = true
		return CardAction{Kind: ActionOpenWarning}
	}
	return CardAction{Kind: ActionNavigate, Path: c.RedirectPath()}
}

// WarningOpen reports whether the not-accessible warning is showing.
func (c *CardController) WarningOpen() bool { return c.warningOpen }

// OpenWarning shows the not-accessible warning.
func (c *CardController) OpenWarning() { c.warningOpen = true }

// CloseWarning dismisses the warning. Reachable from the warning UI itself,
// independent of any activation.
func (c *CardController) CloseWarning() { c.warningOpen = false }

// Refresh force-refetches the services collection and invalidates this
// service's cached entry. Both requests are issued before returning;
// neither is guaranteed to have completed against the daemon. Invoking it
// repeatedly issues fresh requests without accumulating pending work.
func (c *CardController) Refresh(ctx context.Context) error {
	err := c.store.RefreshServices(ctx)
	c.store.InvalidateService(c.svc.ID)
	return err
}

// ResolveInterfaces filters the full interface collection down to the
// subset this service declares, preserving the collection's order. A nil
// declared list or a not-yet-loaded collection resolves to empty, never an
// error: "no interfaces yet" is a valid transient state.
func (c *CardController) ResolveInterfaces(all []Interface) []Interface {
	if len(c.svc.Interfaces) == 0 || len(all) == 0 {
		return []Interface{}
	}

	declared := make(map[string]bool, len(c.svc.Interfaces))
	for _, id := range c.svc.Interfaces {
		declared[id] = true
	}

	resolved := make([]Interface, 0, len(c.svc.Interfaces))
	for _, iface := range all {
		if declared[iface.ID] {
			resolved = append(resolved, iface)
		}
	}
	return resolved
}
