package pricing

import "testing"

func TestComputeBelowFreeShippingThreshold(t *testing.T) {
	q := Compute([]Line{{PriceBDT: 500, Quantity: 2}}, 0)
	if q.SubtotalBDT != 1000 {
		t.Fatalf("subtotal = %d, want 1000", q.SubtotalBDT)
	}
	if q.ShippingBDT != FlatShippingBDT {
		t.Fatalf("shipping = %d, want %d", q.ShippingBDT, FlatShippingBDT)
	}
	if q.TaxBDT != 50 {
		t.Fatalf("tax = %d, want 50", q.TaxBDT)
	}
	if q.TotalBDT != 1000+50+120 {
		t.Fatalf("total = %d, want 1170", q.TotalBDT)
	}
}

func TestComputeFreeShippingAtThreshold(t *testing.T) {
	q := Compute([]Line{{PriceBDT: FreeShippingThresholdBDT, Quantity: 1}}, 0)
	if q.ShippingBDT != 0 {
		t.Fatalf("shipping = %d, want 0 at threshold", q.ShippingBDT)
	}

	q = Compute([]Line{{PriceBDT: FreeShippingThresholdBDT - 1, Quantity: 1}}, 0)
	if q.ShippingBDT != FlatShippingBDT {
		t.Fatalf("shipping = %d, want flat rate just below threshold", q.ShippingBDT)
	}
}

func TestComputeCouponPercent(t *testing.T) {
	q := Compute([]Line{{PriceBDT: 1000, Quantity: 1}}, 10)
	if q.DiscountBDT != 100 {
		t.Fatalf("discount = %d, want 100", q.DiscountBDT)
	}
	// Tax applies to the discounted value.
	if q.TaxBDT != 45 {
		t.Fatalf("tax = %d, want 45", q.TaxBDT)
	}
	if q.TotalBDT != 900+45+120 {
		t.Fatalf("total = %d, want 1065", q.TotalBDT)
	}
}

func TestComputeInvalidCouponPercentIgnored(t *testing.T) {
	for _, pct := range []int{-5, 0, 101} {
		q := Compute([]Line{{PriceBDT: 100, Quantity: 1}}, pct)
		if q.DiscountBDT != 0 {
			t.Fatalf("percent %d: discount = %d, want 0", pct, q.DiscountBDT)
		}
	}
}

func TestComputeSkipsInvalidLines(t *testing.T) {
	q := Compute([]Line{
		{PriceBDT: 100, Quantity: 1},
		{PriceBDT: 100, Quantity: 0},
		{PriceBDT: -50, Quantity: 2},
	}, 0)
	if q.SubtotalBDT != 100 {
		t.Fatalf("subtotal = %d, want 100", q.SubtotalBDT)
	}
}

func TestComputeEmptyCart(t *testing.T) {
	q := Compute(nil, 25)
	if q != (Quote{}) {
		t.Fatalf("empty cart should produce a zero quote, got %+v", q)
	}
}

func TestComputeUSDMirror(t *testing.T) {
	// 1200 BDT at 120 BDT/USD is exactly 10 USD.
	q := Compute([]Line{{PriceBDT: 2400, Quantity: 1}}, 0)
	// subtotal 2400, free shipping, tax 120, total 2520 BDT = 21 USD.
	if q.TotalBDT != 2520 {
		t.Fatalf("total = %d, want 2520", q.TotalBDT)
	}
	if q.TotalUSDCents != 2100 {
		t.Fatalf("usd cents = %d, want 2100", q.TotalUSDCents)
	}
}
