package entity

import "github.com/shopspring/decimal"

// MonthlyCount is one bucket of the consultation histogram
type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// ConsultationStats summarises consultation activity for a doctor or the whole clinic
type ConsultationStats struct {
	TotalConsultations int64           `json:"total_consultations"`
	TodayConsultations int64           `json:"today_consultations"`
	MonthlyStats       []MonthlyCount  `json:"monthly_stats"`
	PaidRevenue        decimal.Decimal `json:"paid_revenue"`
}
