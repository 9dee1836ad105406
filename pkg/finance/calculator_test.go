package finance

import (
	"math"
	"testing"
)

func TestPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		want      float64
	}{
		{
			name:      "zero rate straight line",
			principal: 120000,
			rate:      0,
			term:      12,
			want:      10000,
		},
		{
			name:      "standard amortization",
			principal: 300000,
			rate:      10.5,
			term:      24,
			want:      13912.8,
		},
		{
			name:      "single month",
			principal: 10000,
			rate:      0,
			term:      1,
			want:      10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payment(tt.principal, tt.rate, tt.term)
			if err != nil {
				t.Fatalf("Payment() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1 {
				t.Errorf("Payment() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestPaymentRejectsNonPositiveTerm(t *testing.T) {
	for _, term := range []int{0, -12} {
		if _, err := Payment(100000, 10.5, term); err == nil {
			t.Errorf("Payment() with term %d: expected error, got nil", term)
		}
		if _, err := MaxPrincipal(5000, 10.5, term); err == nil {
			t.Errorf("MaxPrincipal() with term %d: expected error, got nil", term)
		}
	}
}

func TestPaymentCoversPrincipal(t *testing.T) {
	// Over the full term the installments must repay at least the principal.
	principals := []float64{10000, 300000, 5000000}
	rates := []float64{0.1, 8, 10.5, 24}
	terms := []int{12, 24, 48, 72}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range terms {
				payment, err := Payment(p, r, n)
				if err != nil {
					t.Fatalf("Payment(%v, %v, %d) error = %v", p, r, n, err)
				}
				if payment*float64(n) < p-0.01 {
					t.Errorf("Payment(%v, %v, %d) = %v: total %v does not cover principal",
						p, r, n, payment, payment*float64(n))
				}
			}
		}
	}
}

func TestPaymentMonotonicInRate(t *testing.T) {
	prev := 0.0
	for _, rate := range []float64{0, 2, 5, 10.5, 15, 24} {
		payment, err := Payment(500000, rate, 36)
		if err != nil {
			t.Fatalf("Payment() error = %v", err)
		}
		if payment < prev {
			t.Errorf("Payment at rate %v = %v, less than payment at lower rate (%v)", rate, payment, prev)
		}
		prev = payment
	}
}

func TestMaxPrincipalRoundTrip(t *testing.T) {
	// MaxPrincipal(Payment(P)) must recover P within rounding tolerance.
	tests := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{300000, 10.5, 24},
		{900000, 9.25, 60},
		{50000, 18, 12},
		{4999999, 7.5, 72},
	}

	for _, tt := range tests {
		payment, err := Payment(tt.principal, tt.rate, tt.term)
		if err != nil {
			t.Fatalf("Payment() error = %v", err)
		}
		back, err := MaxPrincipal(payment, tt.rate, tt.term)
		if err != nil {
			t.Fatalf("MaxPrincipal() error = %v", err)
		}
		// Payment is rounded to 2 decimals, so allow a small drift on the way back.
		if math.Abs(back-tt.principal) > 5 {
			t.Errorf("round-trip principal = %v, want %v", back, tt.principal)
		}
	}
}

func TestMaxPrincipalZeroRate(t *testing.T) {
	got, err := MaxPrincipal(10000, 0, 12)
	if err != nil {
		t.Fatalf("MaxPrincipal() error = %v", err)
	}
	if got != 120000 {
		t.Errorf("MaxPrincipal() = %v, want 120000", got)
	}
}
