package model

import "time"

// Status describes order lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusConfirmed Status = "confirmed"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ShelfLife is the window between order creation and blood expiry.
const ShelfLife = 35 * 24 * time.Hour

// successor holds the single legal next step of the fulfillment chain.
var successor = map[Status]Status{
	StatusPending:   StatusVerified,
	StatusVerified:  StatusConfirmed,
	StatusConfirmed: StatusReady,
	StatusReady:     StatusCompleted,
}

// IsValid reports whether s is one of the six known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusConfirmed, StatusReady, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal edge:
// the next step of the chain, or cancellation from any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if !next.IsValid() || s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return successor[s] == next
}

// BloodType is an ABO/Rh blood group.
type BloodType string

const (
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
)

// IsValid reports whether b is a known blood group.
func (b BloodType) IsValid() bool {
	switch b {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	default:
		return false
	}
}

// Urgency describes how soon blood is required.
type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNormal    Urgency = "normal"
)

// IsValid reports whether u is a known urgency level.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencyNormal:
		return true
	default:
		return false
	}
}

// SourceType discriminates the supplying entity collection.
type SourceType string

const (
	SourceOrganization SourceType = "organization"
	SourceHospital     SourceType = "hospital"
)

// IsValid reports whether t names a known source collection.
func (t SourceType) IsValid() bool {
	return t == SourceOrganization || t == SourceHospital
}

// Source references the organization or hospital supplying blood.
// Name is denormalized at creation time and not re-synced on rename.
type Source struct {
	Type SourceType `json:"type"`
	ID   string     `json:"id"`
	Name string     `json:"name"`
}

// Pricing is the cost breakdown frozen onto an order at creation.
// TotalCost is accepted from the creation request and never recomputed.
type Pricing struct {
	BloodPrice     float64 `json:"blood_price"`
	ProcessingFee  float64 `json:"processing_fee"`
	ScreeningFee   float64 `json:"screening_fee"`
	ServiceCharge  float64 `json:"service_charge"`
	AdditionalFees float64 `json:"additional_fees"`
	TotalCost      float64 `json:"total_cost"`
}

// HistoryEntry is one record of the append-only status ledger.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

// Order is a blood purchase order.
type Order struct {
	ID             string
	TrackingNumber string
	PurchasedBy    int64
	Source         Source
	BloodType      BloodType
	Units          int
	Urgency        Urgency
	PatientName    string
	ContactPhone   string
	RequiredDate   time.Time
	ExpiryDate     time.Time
	Pricing        Pricing
	Status         Status
	History        []HistoryEntry
	PickupDetails  string
	PaymentStatus  string
	PaymentMethod  string
	Notes          string
	AdminNotes     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Draft carries caller-supplied fields for order creation.
type Draft struct {
	Source        Source
	BloodType     BloodType
	Units         int
	Urgency       Urgency
	PatientName   string
	ContactPhone  string
	RequiredDate  time.Time
	Pricing       Pricing
	PickupDetails string
	PaymentMethod string
	Notes         string
}

// TransitionExtra carries optional payloads merged during a transition.
type TransitionExtra struct {
	AdminNotes    *string
	PickupDetails *string
}
