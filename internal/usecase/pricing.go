package usecase

import (
	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
)

// ValidatePricing gates a submitted price breakdown before it is frozen onto
// an order. Every component must be present and positive; zero is rejected.
// The caller-supplied total is trusted and never checked against the sum of
// components.
func ValidatePricing(p model.Pricing) *domainErrors.ValidationError {
	verr := &domainErrors.ValidationError{}

	required := []struct {
		field string
		value float64
	}{
		{"pricing.blood_price", p.BloodPrice},
		{"pricing.processing_fee", p.ProcessingFee},
		{"pricing.screening_fee", p.ScreeningFee},
		{"pricing.service_charge", p.ServiceCharge},
		{"pricing.total_cost", p.TotalCost},
	}
	for _, r := range required {
		if r.value <= 0 {
			verr.Add(r.field, "must be a positive amount")
		}
	}

	if p.AdditionalFees < 0 {
		verr.Add("pricing.additional_fees", "must not be negative")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
