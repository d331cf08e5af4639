package models

// MTrade is a single executed match between two orders.
// Timestamp is in unix milliseconds
type MTrade struct {
	BuyOrderID  string  `json:"buy_order_id"`
	SellOrderID string  `json:"sell_order_id"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Timestamp   int64   `json:"timestamp"`
}

// MSymbolTrade pairs a trade with the symbol it executed on, used by the
// journal where rows from many symbols share one table
type MSymbolTrade struct {
	Symbol string `json:"symbol"`
	Trade  MTrade `json:"trade"`
}
