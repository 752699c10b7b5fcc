package treasury_test

import (
	"errors"
	"testing"

	"stakepool/internal/treasury"
)

func TestSimulated_DebitReducesBalance(t *testing.T) {
	tr := treasury.NewSimulated(1_000)

	if err := tr.Debit(400); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if got := tr.Available(); got != 600 {
		t.Errorf("available: got %d, want 600", got)
	}
}

func TestSimulated_DebitInsufficientFunds(t *testing.T) {
	tr := treasury.NewSimulated(100)

	err := tr.Debit(101)
	if !errors.Is(err, treasury.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := tr.Available(); got != 100 {
		t.Errorf("failed debit must not change balance, got %d", got)
	}
}

func TestSimulated_CreditIncreasesBalance(t *testing.T) {
	tr := treasury.NewSimulated(0)

	if err := tr.Credit(250); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if got := tr.Available(); got != 250 {
		t.Errorf("available: got %d, want 250", got)
	}
}

func TestSimulated_DebitExactBalance(t *testing.T) {
	tr := treasury.NewSimulated(77)

	if err := tr.Debit(77); err != nil {
		t.Fatalf("debit of exact balance should succeed: %v", err)
	}
	if got := tr.Available(); got != 0 {
		t.Errorf("available: got %d, want 0", got)
	}
}
