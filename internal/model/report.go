package model

// Report series are comma-joined strings, one element per day of the
// requested window, in window order.

type TurnoverReport struct {
	DateList     string `json:"date_list"`
	TurnoverList string `json:"turnover_list"`
}

type UserReport struct {
	DateList      string `json:"date_list"`
	TotalUserList string `json:"total_user_list"`
	NewUserList   string `json:"new_user_list"`
}

type OrderReport struct {
	DateList            string  `json:"date_list"`
	OrderCountList      string  `json:"order_count_list"`
	ValidOrderCountList string  `json:"valid_order_count_list"`
	TotalOrderCount     int64   `json:"total_order_count"`
	ValidOrderCount     int64   `json:"valid_order_count"`
	OrderCompletionRate float64 `json:"order_completion_rate"`
}

// GoodsSale is one leaderboard row: product name and total quantity sold.
type GoodsSale struct {
	Name   string `json:"name"`
	Number int64  `json:"number"`
}

type SalesTopReport struct {
	NameList   string `json:"name_list"`
	NumberList string `json:"number_list"`
}

// BusinessData is the per-window overview block of the operational snapshot.
type BusinessData struct {
	Turnover            float64 `json:"turnover"`
	OrderCount          int64   `json:"order_count"`
	ValidOrderCount     int64   `json:"valid_order_count"`
	OrderCompletionRate float64 `json:"order_completion_rate"`
	NewUsers            int64   `json:"new_users"`
}

type DailyBusinessData struct {
	Date string `json:"date"`
	BusinessData
}

// OperationalSnapshot is the trailing-30-day report document handed to
// whatever renders it (spreadsheet, dashboard); this core only composes it.
type OperationalSnapshot struct {
	Begin   string              `json:"begin"`
	End     string              `json:"end"`
	Summary BusinessData        `json:"summary"`
	Days    []DailyBusinessData `json:"days"`
}
