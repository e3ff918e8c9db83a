package domain

import (
	"errors"
	"testing"
)

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{"Valid Buy", Order{Price: 1000150, Amount: 0.5, Side: SideBuy}, false},
		{"Valid Sell", Order{Price: 999960, Amount: 1, Side: SideSell}, false},
		{"Unknown Side", Order{Price: 100, Amount: 1, Side: "hold"}, true},
		{"Empty Side", Order{Price: 100, Amount: 1}, true},
		{"Zero Price", Order{Price: 0, Amount: 1, Side: SideBuy}, true},
		{"Negative Price", Order{Price: -5, Amount: 1, Side: SideBuy}, true},
		{"Zero Amount", Order{Price: 100, Amount: 0, Side: SideSell}, true},
		{"Negative Amount", Order{Price: 100, Amount: -1, Side: SideSell}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if IsRetriable(err) {
					t.Error("validation errors must never be retriable")
				}
			}
		})
	}
}

func TestSide_Valid(t *testing.T) {
	if !SideBuy.Valid() || !SideSell.Valid() {
		t.Error("buy and sell must be valid sides")
	}
	if Side("BUY").Valid() {
		t.Error("side matching is case-sensitive")
	}
}
