package rates

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

type Repository interface {
	ListPricingRules(ctx context.Context, zone string) ([]models.PricingRule, error)
	CreatePricingRule(ctx context.Context, r models.PricingRule) (*models.PricingRule, error)
	UpdatePricingRule(ctx context.Context, r models.PricingRule) error
	DeletePricingRule(ctx context.Context, id uint64) error
}

// Service is the admin CRUD over the rate table. Rules may overlap;
// the pricing engine resolves overlap, so no exhaustiveness or
// disjointness is enforced here.
type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, zone string) ([]models.PricingRule, error) {
	return s.repo.ListPricingRules(ctx, zone)
}

func (s *Service) Create(ctx context.Context, r models.PricingRule) (*models.PricingRule, error) {
	if err := validateRule(&r); err != nil {
		return nil, err
	}
	return s.repo.CreatePricingRule(ctx, r)
}

func (s *Service) Update(ctx context.Context, r models.PricingRule) error {
	if r.ID == 0 {
		return errors.Wrap(models.ErrValidation, "rule id is required")
	}
	if err := validateRule(&r); err != nil {
		return err
	}
	return s.repo.UpdatePricingRule(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	if id == 0 {
		return errors.Wrap(models.ErrValidation, "rule id is required")
	}
	return s.repo.DeletePricingRule(ctx, id)
}

func validateRule(r *models.PricingRule) error {
	r.Zone = strings.TrimSpace(r.Zone)
	if r.Zone == "" {
		r.Zone = models.ZoneDefault
	}
	if r.WeightFrom < 0 {
		return errors.Wrap(models.ErrValidation, "weight_from must not be negative")
	}
	if r.WeightTo <= r.WeightFrom {
		return errors.Wrap(models.ErrValidation, "weight_to must be greater than weight_from")
	}
	if r.PricePerKG <= 0 {
		return errors.Wrap(models.ErrValidation, "price_per_kg must be positive")
	}
	return nil
}
