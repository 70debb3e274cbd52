package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/demodata"
	"github.com/spec-kit/society-waste-service/internal/domain"
	"github.com/spec-kit/society-waste-service/internal/geocode"
	"github.com/spec-kit/society-waste-service/internal/repository"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// SocietyService serves the public society directory along with its demo schedule and map data.
type SocietyService struct {
	accounts repository.AccountRepository
	geocoder geocode.Geocoder
	box      demodata.Box
	now      func() time.Time
	logger   *zap.Logger
}

// SocietyDependencies bundles collaborators for the society service. Geocoder may be nil,
// in which case every pin uses its generated position.
type SocietyDependencies struct {
	AccountRepo repository.AccountRepository
	Geocoder    geocode.Geocoder
	MapBox      demodata.Box
	Now         func() time.Time
	Logger      *zap.Logger
}

// NewSocietyService constructs the service.
func NewSocietyService(deps SocietyDependencies) *SocietyService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocietyService{
		accounts: deps.AccountRepo,
		geocoder: deps.Geocoder,
		box:      deps.MapBox,
		now:      now,
		logger:   logger,
	}
}

// List returns every registered society.
func (s *SocietyService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// Get returns one society.
func (s *SocietyService) Get(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("society", map[string]any{"society_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return account, nil
}

// Schedule returns the generated collection calendar of a society.
func (s *SocietyService) Schedule(ctx context.Context, id string) ([]domain.CollectionSlot, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return demodata.Schedule(account.ID, s.now()), nil
}

// MapPins places every society on the map. Addresses the geocoder cannot resolve fall back
// to a stable generated point inside the configured area.
func (s *SocietyService) MapPins(ctx context.Context) ([]domain.MapPin, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	pins := make([]domain.MapPin, 0, len(accounts))
	for _, account := range accounts {
		pin := domain.MapPin{
			SocietyID:   account.ID,
			SocietyName: account.SocietyName,
			Address:     account.Address,
		}
		if point, ok := s.lookup(ctx, account); ok {
			pin.Point = point
			pin.Geocoded = true
		} else {
			pin.Point = demodata.Coordinates(account.ID, s.box)
		}
		pins = append(pins, pin)
	}
	return pins, nil
}

func (s *SocietyService) lookup(ctx context.Context, account domain.Account) (domain.Coordinates, bool) {
	if s.geocoder == nil {
		return domain.Coordinates{}, false
	}
	point, found, err := s.geocoder.Geocode(ctx, account.Address)
	if err != nil {
		s.logger.Debug("geocode failed, using generated point", zap.String("society_id", account.ID), zap.Error(err))
		return domain.Coordinates{}, false
	}
	return point, found
}
