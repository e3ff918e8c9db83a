package domain

import "time"

// ExecutionStatus is the outcome of evaluating one order.
type ExecutionStatus string

const (
	// StatusDone means the order fully executed at the current touch price.
	StatusDone ExecutionStatus = "done"
	// StatusNothing means the order did not execute. This is a valid,
	// non-erroneous outcome (slippage rejection or no usable quote).
	StatusNothing ExecutionStatus = "nothing"
)

// displayTimeLayout is the wall-clock format for executed_time.
const displayTimeLayout = "2006/01/02 15:04:05"

// Execution is the immutable record returned for every evaluated order.
// It is handed back to the caller synchronously and never stored
// server-side; any history is client-held. ID is omitted only when the
// sequence generator itself was unavailable.
type Execution struct {
	ID            string          `json:"id,omitempty"`
	Price         float64         `json:"price"`
	Amount        float64         `json:"amount"`
	Side          Side            `json:"side"`
	ExecutedPrice *float64        `json:"executed_price,omitempty"`
	ExecutedTime  *string         `json:"executed_time,omitempty"`
	Status        ExecutionStatus `json:"status"`
}

// DoneExecution builds the record for an order that traded at price.
func DoneExecution(id string, order Order, price float64, at time.Time) Execution {
	executedTime := at.Format(displayTimeLayout)
	return Execution{
		ID:            id,
		Price:         order.Price,
		Amount:        order.Amount,
		Side:          order.Side,
		ExecutedPrice: &price,
		ExecutedTime:  &executedTime,
		Status:        StatusDone,
	}
}

// NothingExecution builds the record for an order that did not trade.
// id may be empty when the sequence generator was unreachable.
func NothingExecution(id string, order Order) Execution {
	return Execution{
		ID:     id,
		Price:  order.Price,
		Amount: order.Amount,
		Side:   order.Side,
		Status: StatusNothing,
	}
}
