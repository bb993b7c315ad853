// Package currency converts between the catalog currency (BDT) and the
// gateway charge currency (USD) at the fixed marketplace rate. Amounts are
// integers: whole taka on the catalog side, cents on the gateway side.
package currency

// BDTPerUSD is the fixed conversion rate. Fees and prices are snapshotted in
// both currencies at booking/checkout time, so a later rate change never
// rewrites history.
const BDTPerUSD = 120

// BDTToUSDCents converts whole taka to US cents, rounding half up.
func BDTToUSDCents(bdt int64) int64 {
	if bdt <= 0 {
		return 0
	}
	return (bdt*100 + BDTPerUSD/2) / BDTPerUSD
}
