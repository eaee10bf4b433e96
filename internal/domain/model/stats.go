package model

// StatsSummary aggregates dashboard figures over one principal's scope.
type StatsSummary struct {
	Total       int64
	ByStatus    map[Status]int64
	ByBloodType map[BloodType]int64
	ByUrgency   map[Urgency]int64

	// Revenue sums pricing total cost over completed orders only.
	Revenue float64

	Today     int64
	ThisWeek  int64
	ThisMonth int64
}
