package models

// MSnapshot is the point-in-time market state of one symbol
type MSnapshot struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Volume     int64   `json:"volume"`
	TradeCount int64   `json:"trade_count"`
	Session    string  `json:"session"`
	Timestamp  int64   `json:"timestamp"`
}
