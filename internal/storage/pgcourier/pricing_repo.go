package pgcourier

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

// ListPricingRules returns the rule snapshot for one zone, or every
// zone when zone is empty. Read-committed: callers take whatever is
// visible at query time, prices are never recomputed afterwards.
func (s *Storage) ListPricingRules(ctx context.Context, zone string) ([]models.PricingRule, error) {
	q := `
SELECT id, zone, weight_from, weight_to, price_per_kg, created_at, updated_at
FROM pricing_rules
`
	var rows pgx.Rows
	var err error
	if zone == "" {
		rows, err = s.db.Query(ctx, q+`ORDER BY zone, weight_from ASC`)
	} else {
		rows, err = s.db.Query(ctx, q+`WHERE zone = $1 ORDER BY weight_from ASC`, zone)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select pricing rules")
	}
	defer rows.Close()

	var out []models.PricingRule
	for rows.Next() {
		var r models.PricingRule
		if err := rows.Scan(&r.ID, &r.Zone, &r.WeightFrom, &r.WeightTo, &r.PricePerKG, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan pricing rule")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) CreatePricingRule(ctx context.Context, r models.PricingRule) (*models.PricingRule, error) {
	now := time.Now().UTC()
	err := s.db.QueryRow(ctx, `
INSERT INTO pricing_rules (zone, weight_from, weight_to, price_per_kg, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$5)
RETURNING id
`, r.Zone, r.WeightFrom, r.WeightTo, r.PricePerKG, now).Scan(&r.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert pricing rule")
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	return &r, nil
}

func (s *Storage) UpdatePricingRule(ctx context.Context, r models.PricingRule) error {
	tag, err := s.db.Exec(ctx, `
UPDATE pricing_rules
SET zone = $2, weight_from = $3, weight_to = $4, price_per_kg = $5, updated_at = now()
WHERE id = $1
`, r.ID, r.Zone, r.WeightFrom, r.WeightTo, r.PricePerKG)
	if err != nil {
		return errors.Wrap(err, "update pricing rule")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(models.ErrNotFound, "pricing rule")
	}
	return nil
}

func (s *Storage) DeletePricingRule(ctx context.Context, id uint64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM pricing_rules WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete pricing rule")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(models.ErrNotFound, "pricing rule")
	}
	return nil
}
