package costbasis

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{usd(1234.5), "$1,234.50"},
		{gbp(0.125), "£0.13"},
		{usd(-3), "-$3.00"},
	}
	for _, tc := range testCases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestMoney_SignedString(t *testing.T) {
	if got := usd(0.001).SignedString(); got != "-" {
		t.Errorf("SignedString() = %q, want %q", got, "-")
	}
	if got := usd(5).SignedString(); got != "+$5.00" {
		t.Errorf("SignedString() = %q, want %q", got, "+$5.00")
	}
}

func TestMoney_KeepsFullPrecision(t *testing.T) {
	// a third of a cent, a thousand times, must not drift.
	third := usd(0.01).Div(Q(3))
	sum := usd(0)
	for i := 0; i < 3000; i++ {
		sum = sum.Add(third)
	}
	if got := sum.Round(); !got.Equal(usd(10)) {
		t.Errorf("sum of 3000 thirds of a cent = %v, want %v", got, usd(10))
	}
}

func TestMoney_DivByZeroIsZero(t *testing.T) {
	got := usd(100).Div(Q(0))
	if !got.Equal(usd(0)) {
		t.Errorf("Div(0) = %v, want %v", got, usd(0))
	}
	if p := usd(100).Percent(usd(0)); !p.IsZero() {
		t.Errorf("Percent(0) = %v, want 0", p)
	}
	if q := Q(1).Div(Q(0)); !q.IsZero() {
		t.Errorf("Quantity.Div(0) = %v, want 0", q)
	}
}

func TestMoney_MixedCurrenciesPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Add() of USD and GBP did not panic")
		}
	}()
	usd(1).Add(gbp(1))
}

func TestMoney_Compare(t *testing.T) {
	if _, err := usd(1).Compare(gbp(1)); !errors.Is(err, ErrIncomparable) {
		t.Errorf("Compare(USD, GBP) error = %v, want %v", err, ErrIncomparable)
	}
	got, err := usd(1).Compare(usd(2))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if got != -1 {
		t.Errorf("Compare() = %d, want -1", got)
	}
}

func TestMoney_Convert(t *testing.T) {
	// the rate is GBP per USD: 100 USD at 0.8 is 80 GBP.
	got := usd(100).Convert(FX(0.8), GBP)
	if !got.Equal(gbp(80)) {
		t.Errorf("Convert() = %v, want %v", got, gbp(80))
	}
	back := got.Convert(FX(0.8).Inverse(), USD)
	if !back.Round().Equal(usd(100)) {
		t.Errorf("Convert() back = %v, want %v", back, usd(100))
	}
}

func TestValidateCurrency(t *testing.T) {
	for _, c := range []string{USD, GBP, "EUR"} {
		if err := ValidateCurrency(c); err != nil {
			t.Errorf("ValidateCurrency(%q) error = %v", c, err)
		}
	}
	if err := ValidateCurrency("XYZW"); err == nil {
		t.Errorf("ValidateCurrency(%q) expected an error", "XYZW")
	}
}

func TestPercent_String(t *testing.T) {
	p := Pct(decimal.RequireFromString("12.345"))
	if got := p.String(); got != "12.35%" {
		t.Errorf("String() = %q, want %q", got, "12.35%")
	}
	if got := p.SignedString(); got != "+12.35%" {
		t.Errorf("SignedString() = %q, want %q", got, "+12.35%")
	}
	if got := Pct(0).SignedString(); got != "-" {
		t.Errorf("SignedString() = %q, want %q", got, "-")
	}
}
