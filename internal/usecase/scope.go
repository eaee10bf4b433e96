package usecase

import "github.com/bloodbridge/procurement/internal/domain/model"

// BuildFilter translates a principal plus caller-supplied filters into a
// datastore filter restricted to the principal's visibility. This is the
// single place scoping logic lives; listing, reads, and aggregation all
// route through it.
func BuildFilter(principal model.Principal, requested model.RequestedFilters) model.Filter {
	filter := model.Filter{
		Status:    requested.Status,
		BloodType: requested.BloodType,
		Urgency:   requested.Urgency,
		From:      requested.From,
		To:        requested.To,
	}

	switch principal.Kind {
	case model.KindSuperAdmin:
		// Unrestricted.
	case model.KindOrgAdmin, model.KindHospitalAdmin:
		sourceType, _ := principal.SourceScope()
		scopeID := principal.ScopeID
		filter.SourceType = &sourceType
		filter.SourceID = &scopeID
	default:
		// Plain users see their own purchases only, regardless of any
		// filter the caller supplies.
		userID := principal.UserID
		filter.PurchasedBy = &userID
	}

	return filter
}

// Visible reports whether the principal may see the given order.
func Visible(principal model.Principal, order *model.Order) bool {
	switch principal.Kind {
	case model.KindSuperAdmin:
		return true
	case model.KindOrgAdmin, model.KindHospitalAdmin:
		sourceType, _ := principal.SourceScope()
		return order.Source.Type == sourceType && order.Source.ID == principal.ScopeID
	default:
		return order.PurchasedBy == principal.UserID
	}
}
