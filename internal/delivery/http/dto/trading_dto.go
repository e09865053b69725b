package dto

// OpenOrderRequest is the place-a-bet payload
type OpenOrderRequest struct {
	Symbol    string `json:"symbol" validate:"required"`
	Direction string `json:"direction" validate:"required"`
	Timeframe string `json:"timeframe" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

// TimeframeOutput describes one selectable bet duration
type TimeframeOutput struct {
	Value      string `json:"value"`
	Label      string `json:"label"`
	DurationMs int64  `json:"duration_ms"`
	MinAmount  int64  `json:"min_amount"`
}
