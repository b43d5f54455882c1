package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/internal/repository"
	apperrors "github.com/industriassp/storefront/pkg/errors"
)

const ownerSearchLimit = 10

// OwnerService serves the customer autocomplete directory: prefix search over
// the customers table plus the per-session selection frequency used for
// ranking.
type OwnerService struct {
	repo   repository.CustomerRepository
	freq   repository.FrequencyStore
	logger *slog.Logger
}

// NewOwnerService wires an owner service.
func NewOwnerService(repo repository.CustomerRepository, freq repository.FrequencyStore, logger *slog.Logger) *OwnerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OwnerService{repo: repo, freq: freq, logger: logger}
}

// Search returns customers matching the query, optionally restricted to a
// document type. Queries shorter than two characters return an empty list
// without hitting the directory.
func (s *OwnerService) Search(ctx context.Context, query, filter string) ([]domain.OwnerRecord, error) {
	if filter == "" {
		filter = domain.FilterAny
	}
	if !domain.IsValidDocumentFilter(filter) {
		return nil, apperrors.InvalidInput("type must be one of dni, ruc, any")
	}

	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []domain.OwnerRecord{}, nil
	}

	records, err := s.repo.Search(ctx, query, filter, ownerSearchLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, "owner search")
	}
	if records == nil {
		records = []domain.OwnerRecord{}
	}
	return records, nil
}

// Select records that a suggestion was chosen: the session's local frequency
// counter and the directory-wide counter both move. Failures in either write
// are logged but do not fail the selection.
func (s *OwnerService) Select(ctx context.Context, sessionID string, rec domain.OwnerRecord) {
	if s.freq != nil {
		if _, err := s.freq.Incr(ctx, sessionID, rec.Key()); err != nil {
			s.logger.Warn("failed to bump session frequency", "key", rec.Key(), "error", err)
		}
	}
	if rec.ID != "" {
		if err := s.repo.IncrementFrequency(ctx, rec.ID); err != nil {
			s.logger.Warn("failed to bump directory frequency", "customer_id", rec.ID, "error", err)
		}
	}
}
