package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/cache"
	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
)

// ErrInvalidArea is returned for malformed area requests.
var ErrInvalidArea = errors.New("invalid area request")

type AreaService struct {
	repo  repository.AreaRepository
	cache cache.SalesCache
}

func NewAreaService(repo repository.AreaRepository, cacheImpl cache.SalesCache) *AreaService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSalesCache()
	}
	return &AreaService{repo: repo, cache: cacheImpl}
}

func (s *AreaService) List(ctx context.Context) ([]domain.Area, error) {
	return s.repo.List(ctx)
}

// Apply performs one add, update or delete and returns the resulting list.
func (s *AreaService) Apply(ctx context.Context, action domain.AreaAction, area domain.Area) ([]domain.Area, error) {
	area.ID = strings.TrimSpace(area.ID)
	if area.ID == "" {
		return nil, fmt.Errorf("%w: area id is required", ErrInvalidArea)
	}

	var err error
	switch action {
	case domain.AreaActionAdd:
		if strings.TrimSpace(area.Name) == "" {
			return nil, fmt.Errorf("%w: area name is required", ErrInvalidArea)
		}
		err = s.repo.Add(ctx, area)
	case domain.AreaActionUpdate:
		err = s.repo.Update(ctx, area)
	case domain.AreaActionDelete:
		err = s.repo.Delete(ctx, area.ID)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidArea, action)
	}
	if err != nil {
		return nil, err
	}

	// Dashboards embed area targets.
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("areas: cache invalidation failed")
	}

	return s.repo.List(ctx)
}
