package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/industriassp/storefront/internal/service"
	apperrors "github.com/industriassp/storefront/pkg/errors"
	"github.com/industriassp/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// --- Response envelope ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type overlayResponse struct {
	Open bool `json:"open"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: h.service.GetCart(r.Context(), sid)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	view, err := h.service.AddToCart(r.Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: view})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId must be a positive integer"},
		})
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	view := h.service.SetQuantity(r.Context(), sid, productID, req.Quantity)
	writeJSON(w, http.StatusOK, response{Data: view})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId must be a positive integer"},
		})
		return
	}

	view := h.service.RemoveItem(r.Context(), sid, productID)
	writeJSON(w, http.StatusOK, response{Data: view})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: h.service.Clear(r.Context(), sid)})
}

// GetOverlay handles GET /api/v1/cart/overlay
func (h *CartHandler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: overlayResponse{Open: h.service.OverlayOpen(r.Context(), sid)}})
}

// OpenOverlay handles POST /api/v1/cart/overlay/open
func (h *CartHandler) OpenOverlay(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: overlayResponse{Open: h.service.OpenOverlay(r.Context(), sid)}})
}

// CloseOverlay handles POST /api/v1/cart/overlay/close
func (h *CartHandler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: overlayResponse{Open: h.service.CloseOverlay(r.Context(), sid)}})
}

// ToggleOverlay handles POST /api/v1/cart/overlay/toggle
func (h *CartHandler) ToggleOverlay(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: overlayResponse{Open: h.service.ToggleOverlay(r.Context(), sid)}})
}

// Notifications handles GET /api/v1/notifications
func (h *CartHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, response{Data: h.service.Notifications(sid)})
}

// --- Helpers ---

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	if errors.Is(err, apperrors.ErrNotFound) {
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	} else if errors.Is(err, apperrors.ErrInvalidInput) {
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}

func (h *CartHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}
