package dto

import (
	"time"

	"github.com/bloodbridge/procurement/internal/domain/model"
)

// PricingPayload mirrors the frozen cost breakdown on the wire.
type PricingPayload struct {
	BloodPrice     float64 `json:"blood_price"`
	ProcessingFee  float64 `json:"processing_fee"`
	ScreeningFee   float64 `json:"screening_fee"`
	ServiceCharge  float64 `json:"service_charge"`
	AdditionalFees float64 `json:"additional_fees"`
	TotalCost      float64 `json:"total_cost"`
}

// CreateOrderRequest is the payload for order creation.
type CreateOrderRequest struct {
	SourceType    string         `json:"source_type"`
	SourceID      string         `json:"source_id"`
	SourceName    string         `json:"source_name"`
	BloodType     string         `json:"blood_type"`
	Units         int            `json:"units"`
	Urgency       string         `json:"urgency"`
	PatientName   string         `json:"patient_name"`
	ContactPhone  string         `json:"contact_phone"`
	RequiredDate  time.Time      `json:"required_date"`
	Pricing       PricingPayload `json:"pricing"`
	PickupDetails string         `json:"pickup_details"`
	PaymentMethod string         `json:"payment_method"`
	Notes         string         `json:"notes"`
}

// Draft converts the request into a domain draft.
func (r CreateOrderRequest) Draft() model.Draft {
	return model.Draft{
		Source: model.Source{
			Type: model.SourceType(r.SourceType),
			ID:   r.SourceID,
			Name: r.SourceName,
		},
		BloodType:     model.BloodType(r.BloodType),
		Units:         r.Units,
		Urgency:       model.Urgency(r.Urgency),
		PatientName:   r.PatientName,
		ContactPhone:  r.ContactPhone,
		RequiredDate:  r.RequiredDate,
		Pricing:       model.Pricing(r.Pricing),
		PickupDetails: r.PickupDetails,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
}

// TransitionRequest is the payload for a status transition.
type TransitionRequest struct {
	Status        string  `json:"status" binding:"required"`
	Note          string  `json:"note"`
	AdminNotes    *string `json:"admin_notes"`
	PickupDetails *string `json:"pickup_details"`
}

// CancelRequest is the payload for order cancellation.
type CancelRequest struct {
	Note string `json:"note"`
}

// HistoryEntryResponse is one audit trail record on the wire.
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

// OrderResponse is the wire representation of an order.
type OrderResponse struct {
	ID             string                 `json:"id"`
	TrackingNumber string                 `json:"tracking_number"`
	SourceType     string                 `json:"source_type"`
	SourceID       string                 `json:"source_id"`
	SourceName     string                 `json:"source_name"`
	BloodType      string                 `json:"blood_type"`
	Units          int                    `json:"units"`
	Urgency        string                 `json:"urgency"`
	PatientName    string                 `json:"patient_name"`
	ContactPhone   string                 `json:"contact_phone"`
	RequiredDate   time.Time              `json:"required_date"`
	ExpiryDate     time.Time              `json:"expiry_date"`
	Pricing        PricingPayload         `json:"pricing"`
	Status         string                 `json:"status"`
	History        []HistoryEntryResponse `json:"status_history"`
	PickupDetails  string                 `json:"pickup_details,omitempty"`
	PaymentStatus  string                 `json:"payment_status"`
	PaymentMethod  string                 `json:"payment_method,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	AdminNotes     string                 `json:"admin_notes,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// FromOrder maps a domain order into its wire representation.
func FromOrder(order *model.Order) OrderResponse {
	history := make([]HistoryEntryResponse, 0, len(order.History))
	for _, e := range order.History {
		history = append(history, HistoryEntryResponse{
			Status:    string(e.Status),
			Timestamp: e.Timestamp,
			Actor:     e.Actor,
			Note:      e.Note,
		})
	}
	return OrderResponse{
		ID:             order.ID,
		TrackingNumber: order.TrackingNumber,
		SourceType:     string(order.Source.Type),
		SourceID:       order.Source.ID,
		SourceName:     order.Source.Name,
		BloodType:      string(order.BloodType),
		Units:          order.Units,
		Urgency:        string(order.Urgency),
		PatientName:    order.PatientName,
		ContactPhone:   order.ContactPhone,
		RequiredDate:   order.RequiredDate,
		ExpiryDate:     order.ExpiryDate,
		Pricing:        PricingPayload(order.Pricing),
		Status:         string(order.Status),
		History:        history,
		PickupDetails:  order.PickupDetails,
		PaymentStatus:  order.PaymentStatus,
		PaymentMethod:  order.PaymentMethod,
		Notes:          order.Notes,
		AdminNotes:     order.AdminNotes,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}
