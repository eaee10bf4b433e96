package dto

import "github.com/bloodbridge/procurement/internal/domain/model"

// StatsResponse is the wire representation of the dashboard summary.
type StatsResponse struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByBloodType map[string]int64 `json:"by_blood_type"`
	ByUrgency   map[string]int64 `json:"by_urgency"`
	Revenue     float64          `json:"revenue"`
	Today       int64            `json:"today"`
	ThisWeek    int64            `json:"this_week"`
	ThisMonth   int64            `json:"this_month"`
}

// FromStats maps a domain summary into its wire representation.
func FromStats(s *model.StatsSummary) StatsResponse {
	resp := StatsResponse{
		Total:       s.Total,
		ByStatus:    make(map[string]int64, len(s.ByStatus)),
		ByBloodType: make(map[string]int64, len(s.ByBloodType)),
		ByUrgency:   make(map[string]int64, len(s.ByUrgency)),
		Revenue:     s.Revenue,
		Today:       s.Today,
		ThisWeek:    s.ThisWeek,
		ThisMonth:   s.ThisMonth,
	}
	for k, v := range s.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range s.ByBloodType {
		resp.ByBloodType[string(k)] = v
	}
	for k, v := range s.ByUrgency {
		resp.ByUrgency[string(k)] = v
	}
	return resp
}
