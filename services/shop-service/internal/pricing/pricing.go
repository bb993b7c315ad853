// Package pricing computes checkout totals. All amounts are whole BDT;
// the USD mirror is derived once from the final total.
package pricing

import "github.com/mahfuz-anam/pawcare/libs/currency"

const (
	// Orders at or above this subtotal ship free.
	FreeShippingThresholdBDT = 2000
	FlatShippingBDT          = 120
	TaxPercent               = 5
)

type Line struct {
	PriceBDT int64
	Quantity int
}

type Quote struct {
	SubtotalBDT   int64
	DiscountBDT   int64
	ShippingBDT   int64
	TaxBDT        int64
	TotalBDT      int64
	TotalUSDCents int64
}

// Compute prices a cart. The coupon percent applies to the subtotal; tax is
// charged on the discounted goods value; shipping is flat below the
// free-shipping threshold (measured on the raw subtotal) and never taxed.
func Compute(lines []Line, couponPercent int) Quote {
	var q Quote
	for _, l := range lines {
		if l.Quantity <= 0 || l.PriceBDT <= 0 {
			continue
		}
		q.SubtotalBDT += l.PriceBDT * int64(l.Quantity)
	}
	if q.SubtotalBDT == 0 {
		return q
	}

	if couponPercent > 0 && couponPercent <= 100 {
		q.DiscountBDT = q.SubtotalBDT * int64(couponPercent) / 100
	}
	taxable := q.SubtotalBDT - q.DiscountBDT
	q.TaxBDT = (taxable*TaxPercent + 50) / 100

	if q.SubtotalBDT < FreeShippingThresholdBDT {
		q.ShippingBDT = FlatShippingBDT
	}

	q.TotalBDT = taxable + q.TaxBDT + q.ShippingBDT
	q.TotalUSDCents = currency.BDTToUSDCents(q.TotalBDT)
	return q
}
