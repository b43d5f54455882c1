package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/internal/service"
	apperrors "github.com/industriassp/storefront/pkg/errors"
	"github.com/industriassp/storefront/pkg/httputil"
	"github.com/industriassp/storefront/pkg/validator"
)

// CustomerHandler serves the owner autocomplete endpoints.
type CustomerHandler struct {
	service *service.OwnerService
	logger  *slog.Logger
}

// NewCustomerHandler creates a customer HTTP handler.
func NewCustomerHandler(svc *service.OwnerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{service: svc, logger: logger}
}

// searchResponse is the wire contract the storefront autocomplete consumes.
type searchResponse struct {
	OK          bool                 `json:"ok"`
	Suggestions []domain.OwnerRecord `json:"suggestions"`
	Error       string               `json:"error,omitempty"`
}

// SelectRequest records that a suggestion was chosen.
type SelectRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Document string `json:"document"`
}

// Search handles GET /api/clientes/search?q={query}&type={dni|ruc|any}
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	filter := r.URL.Query().Get("type")

	records, err := h.service.Search(r.Context(), q, filter)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "search failed"
		if errors.Is(err, apperrors.ErrInvalidInput) {
			status = http.StatusBadRequest
			msg = err.Error()
		} else {
			h.logger.ErrorContext(r.Context(), "owner search failed", slog.String("error", err.Error()))
		}
		writeJSON(w, status, searchResponse{OK: false, Suggestions: []domain.OwnerRecord{}, Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{OK: true, Suggestions: records})
}

// Select handles POST /api/clientes/select
func (h *CustomerHandler) Select(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rec := domain.OwnerRecord{ID: req.ID, Name: req.Name, Document: req.Document}
	h.service.Select(r.Context(), sid, rec)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "recorded"}})
}
