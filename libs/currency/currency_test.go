package currency

import "testing"

func TestBDTToUSDCents(t *testing.T) {
	cases := []struct {
		bdt  int64
		want int64
	}{
		{1200, 1000}, // 1200 BDT = $10.00
		{120, 100},
		{60, 50},
		{1, 1},  // 0.83 cents rounds up
		{0, 0},
		{-50, 0},
	}
	for _, c := range cases {
		if got := BDTToUSDCents(c.bdt); got != c.want {
			t.Fatalf("BDTToUSDCents(%d) = %d, want %d", c.bdt, got, c.want)
		}
	}
}
