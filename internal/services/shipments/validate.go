package shipments

import (
	"math"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateCreate rejects the whole request before anything is
// written. MaxWeightKG mirrors the 50kg cap the booking form imposes.
const MaxWeightKG = 50.0

func validateCreate(in models.ShipmentCreateInput) error {
	required := []struct {
		v, name string
	}{
		{in.SenderName, "sender name"},
		{in.SenderPhone, "sender phone"},
		{in.SenderAddress, "sender address"},
		{in.ReceiverName, "receiver name"},
		{in.ReceiverPhone, "receiver phone"},
		{in.ReceiverAddress, "receiver address"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.v) == "" {
			return errors.Wrapf(models.ErrValidation, "%s is required", f.name)
		}
	}

	if !emailRe.MatchString(in.SenderEmail) {
		return errors.Wrap(models.ErrValidation, "sender email is invalid")
	}
	if !emailRe.MatchString(in.ReceiverEmail) {
		return errors.Wrap(models.ErrValidation, "receiver email is invalid")
	}

	w := in.WeightKG
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return errors.Wrap(models.ErrValidation, "weight must be a positive number")
	}
	if w > MaxWeightKG {
		return errors.Wrapf(models.ErrValidation, "weight exceeds %v kg limit", MaxWeightKG)
	}
	return nil
}
