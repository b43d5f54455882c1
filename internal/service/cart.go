package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/industriassp/storefront/internal/cart"
	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/internal/event"
	"github.com/industriassp/storefront/internal/product"
	apperrors "github.com/industriassp/storefront/pkg/errors"
)

// CartService coordinates cart mutations: stock validation against the
// catalog, the session's cart container, overlay visibility, notifications
// and event publication.
type CartService struct {
	sessions *cart.Manager
	catalog  product.Lookup
	events   event.Publisher
	notifier *Notifier
	logger   *slog.Logger
	addLocks *keyedMutex
}

// NewCartService wires a cart service.
func NewCartService(sessions *cart.Manager, catalog product.Lookup, events event.Publisher, notifier *Notifier, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = event.NopPublisher{}
	}
	return &CartService{
		sessions: sessions,
		catalog:  catalog,
		events:   events,
		notifier: notifier,
		logger:   logger,
		addLocks: newKeyedMutex(),
	}
}

// AddToCart validates the requested quantity against current catalog stock
// and, if it fits, merges the enriched line item into the session's cart.
//
// The check-then-add sequence runs under a per-(session, product) lock so a
// double-submit cannot pass two stock checks before either add lands. When
// the catalog cannot be reached the cart is left untouched: no confirmation,
// no mutation.
func (s *CartService) AddToCart(ctx context.Context, sessionID string, productID int64, quantity int) (domain.CartView, error) {
	if quantity <= 0 {
		quantity = 1
	}

	unlock := s.addLocks.Lock(addLockKey(sessionID, productID))
	defer unlock()

	sess := s.sessions.Session(ctx, sessionID)

	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		stockRejectionsTotal.WithLabelValues("unavailable").Inc()
		s.notify(sessionID, NotifyError, "No se pudo validar el stock. Intenta de nuevo.")
		return sess.Cart.View(), err
	}

	inCart := sess.Cart.QuantityOf(productID)
	desired := inCart + quantity
	if p.Stock <= 0 || desired > p.Stock {
		stockRejectionsTotal.WithLabelValues("insufficient").Inc()
		s.notify(sessionID, NotifyWarning, fmt.Sprintf("Stock insuficiente para %s (disponible: %d)", p.Name, p.Stock))
		return sess.Cart.View(), apperrors.InsufficientStock(
			fmt.Sprintf("requested %d of product %d but only %d in stock", desired, productID, p.Stock))
	}

	sess.Cart.AddItem(ctx, p.LineItem(quantity))
	sess.Overlay.Open()
	s.notify(sessionID, NotifySuccess, fmt.Sprintf("%s agregado al carrito", p.Name))

	view := sess.Cart.View()
	s.events.CartUpdated(ctx, view)
	return view, nil
}

// SetQuantity replaces the quantity of a line item; zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) domain.CartView {
	sess := s.sessions.Session(ctx, sessionID)
	sess.Cart.SetQuantity(ctx, productID, quantity)
	view := sess.Cart.View()
	s.events.CartUpdated(ctx, view)
	return view
}

// RemoveItem deletes a line item from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) domain.CartView {
	sess := s.sessions.Session(ctx, sessionID)
	sess.Cart.RemoveItem(ctx, productID)
	view := sess.Cart.View()
	s.events.CartUpdated(ctx, view)
	return view
}

// Clear empties the cart and deletes its persisted copy.
func (s *CartService) Clear(ctx context.Context, sessionID string) domain.CartView {
	sess := s.sessions.Session(ctx, sessionID)
	sess.Cart.Clear(ctx)
	s.events.CartCleared(ctx, sessionID)
	return sess.Cart.View()
}

// GetCart returns the current cart snapshot.
func (s *CartService) GetCart(ctx context.Context, sessionID string) domain.CartView {
	return s.sessions.Session(ctx, sessionID).Cart.View()
}

// Overlay state operations for the cart panel.

func (s *CartService) OpenOverlay(ctx context.Context, sessionID string) bool {
	sess := s.sessions.Session(ctx, sessionID)
	sess.Overlay.Open()
	return sess.Overlay.IsOpen()
}

func (s *CartService) CloseOverlay(ctx context.Context, sessionID string) bool {
	sess := s.sessions.Session(ctx, sessionID)
	sess.Overlay.Close()
	return sess.Overlay.IsOpen()
}

func (s *CartService) ToggleOverlay(ctx context.Context, sessionID string) bool {
	sess := s.sessions.Session(ctx, sessionID)
	sess.Overlay.Toggle()
	return sess.Overlay.IsOpen()
}

func (s *CartService) OverlayOpen(ctx context.Context, sessionID string) bool {
	return s.sessions.Session(ctx, sessionID).Overlay.IsOpen()
}

// Notifications drains the session's pending notifications.
func (s *CartService) Notifications(sessionID string) []Notification {
	if s.notifier == nil {
		return []Notification{}
	}
	return s.notifier.Drain(sessionID)
}

func (s *CartService) notify(sessionID string, level NotificationLevel, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Push(sessionID, level, message)
}
