package model

import "time"

// Filter restricts order queries. Scope fields (PurchasedBy, SourceType,
// SourceID) are forced by the scoped filter builder and must not be set
// from caller input directly.
type Filter struct {
	PurchasedBy *int64
	SourceType  *SourceType
	SourceID    *string

	Status    *Status
	BloodType *BloodType
	Urgency   *Urgency
	From      *time.Time
	To        *time.Time
}

// RequestedFilters carries caller-supplied, pre-authorization filters.
type RequestedFilters struct {
	Status    *Status
	BloodType *BloodType
	Urgency   *Urgency
	From      *time.Time
	To        *time.Time
}
