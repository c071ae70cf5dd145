package pricing

import (
	"math"
	"time"

	"github.com/BearBump/CourierDesk/internal/models"
)

// Display-only multipliers over the default-zone price. Used for
// pre-quote estimates when a zone has no rules of its own; never used
// to charge a shipment.
const (
	ExpressMultiplier       = 1.5
	InternationalMultiplier = 2.5
)

// Quote computes the price for a weight within a zone over a snapshot
// of the rule table. A rule matches when its zone equals zone and
// weight falls inside [WeightFrom, WeightTo]. When several rules
// match, the one inserted last (highest id) wins; this is also how
// boundary weights shared by two brackets resolve. The matched per-kg
// rate applies to the whole weight, not the bracket portion. No match
// means a zero price.
func Quote(rules []models.PricingRule, weightKG float64, zone string) float64 {
	if weightKG <= 0 || math.IsNaN(weightKG) || math.IsInf(weightKG, 0) {
		return 0
	}
	if zone == "" {
		zone = models.ZoneDefault
	}

	var matched *models.PricingRule
	for i := range rules {
		r := &rules[i]
		if r.Zone != zone {
			continue
		}
		if weightKG < r.WeightFrom || weightKG > r.WeightTo {
			continue
		}
		if matched == nil || r.ID > matched.ID {
			matched = r
		}
	}
	if matched == nil {
		return 0
	}
	return round2(weightKG * matched.PricePerKG)
}

// EstimateFromDefault scales the default-zone price by the zone's
// display multiplier. Only a presentation convenience for zones
// without their own rules.
func EstimateFromDefault(defaultPrice float64, zone string) float64 {
	switch zone {
	case "express":
		return round2(defaultPrice * ExpressMultiplier)
	case "international":
		return round2(defaultPrice * InternationalMultiplier)
	default:
		return round2(defaultPrice)
	}
}

// ExpectedDelivery returns the promised delivery date: three days out
// for shipments up to 10kg, five days for heavier ones. Calendar days,
// no holiday awareness.
func ExpectedDelivery(createdAt time.Time, weightKG float64) time.Time {
	days := 3
	if weightKG > 10 {
		days = 5
	}
	return createdAt.AddDate(0, 0, days)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
