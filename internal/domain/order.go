package domain

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Order is a client request to trade against the current quote. It has no
// identity of its own until evaluated and is never persisted.
type Order struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
	Side   Side    `json:"side"`
}

// Validate rejects malformed orders before they reach the execution
// algorithm. A slippage rejection is not a validation failure.
func (o Order) Validate() error {
	if !o.Side.Valid() {
		return &ValidationError{Field: "side", Message: "side must be \"buy\" or \"sell\""}
	}
	if o.Price <= 0 {
		return &ValidationError{Field: "price", Message: "price must be positive"}
	}
	if o.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	return nil
}
