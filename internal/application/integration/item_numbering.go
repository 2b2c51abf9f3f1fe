package integration

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"go.uber.org/zap"
)

// ItemNumberService checks and generates shop article numbers. One
// instance is shared by all imports of a process; generation is serialized.
type ItemNumberService struct {
	repo   integration.ItemNumberRepository
	prefix string
	logger *zap.Logger

	mu sync.Mutex
	// generated counts the numbers handed out by this instance
	generated int64
}

// NewItemNumberService creates a new ItemNumberService
func NewItemNumberService(repo integration.ItemNumberRepository, prefix string, logger *zap.Logger) *ItemNumberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemNumberService{
		repo:   repo,
		prefix: prefix,
		logger: logger,
	}
}

// IsExistant reports whether any article detail uses number
func (s *ItemNumberService) IsExistant(ctx context.Context, number string) (bool, error) {
	return s.repo.Exists(ctx, number)
}

// IsExistantForItem reports whether number is used by a detail of the
// article. A zero articleID checks all articles.
func (s *ItemNumberService) IsExistantForItem(ctx context.Context, number string, articleID int64) (bool, error) {
	if articleID == 0 {
		return s.repo.Exists(ctx, number)
	}
	return s.repo.ExistsForArticle(ctx, number, articleID)
}

// IsExistantForVariant reports whether number belongs to the article
// detail. A zero detailID checks all details.
func (s *ItemNumberService) IsExistantForVariant(ctx context.Context, number string, detailID int64) (bool, error) {
	if detailID == 0 {
		return s.repo.Exists(ctx, number)
	}
	return s.repo.ExistsForDetail(ctx, number, detailID)
}

// IsValid reports whether the ERP accepts number
func (s *ItemNumberService) IsValid(number string) bool {
	return integration.IsValidItemNumber(number)
}

// NextGenerated returns the next free prefixed number and advances the
// shop's article number counter.
func (s *ItemNumberService) NextGenerated(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, err := s.repo.CounterValue(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read article number counter: %w", err)
	}
	number := counter + s.generated

	var candidate string
	for {
		number++
		s.generated++
		candidate = s.prefix + strconv.FormatInt(number, 10)

		exists, err := s.repo.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check article number %q: %w", candidate, err)
		}
		if !exists {
			break
		}
	}

	if err := s.repo.SetCounterValue(ctx, number); err != nil {
		return "", fmt.Errorf("failed to update article number counter: %w", err)
	}
	if !integration.IsValidItemNumber(candidate) {
		return "", &integration.ValidationError{
			Field:  "item number",
			Value:  candidate,
			Reason: fmt.Sprintf("needs at least %d characters of [A-Za-z0-9._-]", integration.MinItemNumberLength),
		}
	}

	s.logger.Debug("article number generated", zap.String("number", candidate))
	return candidate, nil
}

// Usable returns number if it is set and unused, otherwise a generated one
func (s *ItemNumberService) Usable(ctx context.Context, number string) (string, error) {
	if number != "" {
		exists, err := s.repo.Exists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check article number %q: %w", number, err)
		}
		if !exists {
			return number, nil
		}
	}
	return s.NextGenerated(ctx)
}
