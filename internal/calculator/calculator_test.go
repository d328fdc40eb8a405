package calculator

import (
	"math"
	"testing"
)

func metric(t *testing.T, r *Result, key string) float64 {
	t.Helper()
	v, ok := r.Metrics[key]
	if !ok {
		t.Fatalf("metric %q missing from %v", key, r.Metrics)
	}
	return v
}

func TestCropCost_ReferenceCase(t *testing.T) {
	r := CropCost(Fields{
		"seed":       1000.0,
		"fertilizer": 2000.0,
		"pesticide":  500.0,
		"labour":     3000.0,
		"irrigation": 1500.0,
		"other":      0.0,
		"land_size":  2.0,
	})

	if got := metric(t, r, "total_cost"); got != 8000 {
		t.Errorf("total_cost = %v, want 8000", got)
	}
	if got := metric(t, r, "cost_per_acre"); got != 4000 {
		t.Errorf("cost_per_acre = %v, want 4000", got)
	}
	if r.Highlight != "labour" {
		t.Errorf("highest category = %q, want labour", r.Highlight)
	}
	if got := metric(t, r, "highest_share_pct"); got != 38 {
		t.Errorf("highest share = %v, want 38 (37.5 rounded)", got)
	}
}

func TestCropCost_ZeroTotal(t *testing.T) {
	r := CropCost(Fields{"land_size": 2.0})
	if got := metric(t, r, "total_cost"); got != 0 {
		t.Errorf("total_cost = %v, want 0", got)
	}
	// Shares are 0 when total is 0, and ties break to the first category
	if r.Highlight != "seed" {
		t.Errorf("tie should break to first-listed category, got %q", r.Highlight)
	}
	if got := metric(t, r, "highest_share_pct"); got != 0 {
		t.Errorf("share with zero total = %v, want 0", got)
	}
}

func TestCropCost_MalformedInputsFallBack(t *testing.T) {
	r := CropCost(Fields{
		"seed":      "not-a-number",
		"labour":    "3000",
		"land_size": 0.0, // invalid, falls back to 1
	})
	if got := metric(t, r, "total_cost"); got != 3000 {
		t.Errorf("total_cost = %v, want 3000 (string field parsed, junk dropped)", got)
	}
	if got := metric(t, r, "cost_per_acre"); got != 3000 {
		t.Errorf("cost_per_acre = %v, want 3000", got)
	}
}

func TestProfit_ReferenceCase(t *testing.T) {
	r := Profit(Fields{"yield": 20.0, "rate": 2000.0, "cost": 30000.0})

	if got := metric(t, r, "revenue"); got != 40000 {
		t.Errorf("revenue = %v, want 40000", got)
	}
	if got := metric(t, r, "net_profit"); got != 10000 {
		t.Errorf("net_profit = %v, want 10000", got)
	}
	if got := metric(t, r, "roi_pct"); got != 33 {
		t.Errorf("roi = %v, want 33", got)
	}
	if got := metric(t, r, "break_even_rate"); got != 1500 {
		t.Errorf("break_even_rate = %v, want 1500", got)
	}
	if got := metric(t, r, "profit_margin_pct"); got != 25 {
		t.Errorf("margin = %v, want 25", got)
	}
}

func TestProfit_LossBranchesTips(t *testing.T) {
	profit := Profit(Fields{"yield": 20.0, "rate": 2000.0, "cost": 30000.0})
	loss := Profit(Fields{"yield": 10.0, "rate": 1000.0, "cost": 30000.0})

	if metric(t, loss, "net_profit") >= 0 {
		t.Fatal("expected loss scenario")
	}
	if profit.Tips.Action == loss.Tips.Action {
		t.Error("tips should branch on profit sign")
	}
	if loss.Tips.Action.Hi == "" || loss.Tips.Action.En == "" {
		t.Error("tips must be bilingual")
	}
}

func TestProfit_ZeroDenominators(t *testing.T) {
	r := Profit(Fields{})
	for _, key := range []string{"profit_margin_pct", "roi_pct", "break_even_rate"} {
		if got := metric(t, r, key); got != 0 {
			t.Errorf("%s = %v, want 0 with zero inputs", key, got)
		}
	}
}

func TestLoanEMI_ReferenceCase(t *testing.T) {
	r := LoanEMI(Fields{"principal": 100000.0, "annual_rate": 10.0, "tenure_months": 12.0})

	if got := metric(t, r, "emi"); math.Abs(got-8792) > 1 {
		t.Errorf("emi = %v, want ≈8792", got)
	}
	if got := metric(t, r, "total_payment"); math.Abs(got-105499) > 12 {
		t.Errorf("total_payment = %v, want ≈105499", got)
	}
	if got := metric(t, r, "total_interest"); math.Abs(got-5499) > 12 {
		t.Errorf("total_interest = %v, want ≈5499", got)
	}
}

func TestLoanEMI_ZeroRate(t *testing.T) {
	r := LoanEMI(Fields{"principal": 120000.0, "annual_rate": 0.0, "tenure_months": 12.0})
	if got := metric(t, r, "emi"); got != 10000 {
		t.Errorf("emi at 0%% = %v, want 10000 (P/n)", got)
	}
	if got := metric(t, r, "total_interest"); got != 0 {
		t.Errorf("total_interest at 0%% = %v, want 0", got)
	}
}

func TestStorage_ReferenceCase(t *testing.T) {
	r := Storage(Fields{"quantity": 10.0, "storage_rate": 60.0, "days": 45.0})

	if got := metric(t, r, "daily_rate"); got != 2.0 {
		t.Errorf("daily_rate = %v, want 2.0", got)
	}
	if got := metric(t, r, "total_cost"); got != 900 {
		t.Errorf("total_cost = %v, want 900", got)
	}
}

func TestSeedRequirement_TableAndFallback(t *testing.T) {
	wheat := SeedRequirement(Fields{"crop": "wheat", "land_area": 2.0})
	if got := metric(t, wheat, "seed_kg"); got != 80 {
		t.Errorf("wheat seed = %v kg, want 80", got)
	}
	if got := metric(t, wheat, "total_cost"); got != 2560 {
		t.Errorf("wheat seed cost = %v, want 2560", got)
	}

	// Unlisted crop uses the default rate
	exotic := SeedRequirement(Fields{"crop": "quinoa", "land_area": 3.0})
	if got := metric(t, exotic, "seed_kg"); got != 30 {
		t.Errorf("default seed rate: got %v kg, want 30", got)
	}
}

func TestFertilizer_SoilMultiplierAndHalfBags(t *testing.T) {
	loam := FertilizerRequirement(Fields{"crop": "wheat", "land_area": 1.0, "soil_type": "loam"})
	// wheat urea dose 2.2 → ceil to half bag = 2.5
	if got := metric(t, loam, "urea_bags"); got != 2.5 {
		t.Errorf("urea bags (loam) = %v, want 2.5", got)
	}

	sandy := FertilizerRequirement(Fields{"crop": "wheat", "land_area": 1.0, "soil_type": "sandy"})
	// 2.2 × 1.15 = 2.53 → 3.0
	if got := metric(t, sandy, "urea_bags"); got != 3.0 {
		t.Errorf("urea bags (sandy) = %v, want 3.0", got)
	}

	black := FertilizerRequirement(Fields{"crop": "wheat", "land_area": 1.0, "soil_type": "black"})
	// 2.2 × 0.85 = 1.87 → 2.0
	if got := metric(t, black, "urea_bags"); got != 2.0 {
		t.Errorf("urea bags (black) = %v, want 2.0", got)
	}
}

func TestPesticideDilution(t *testing.T) {
	r := PesticideDilution(Fields{"pesticide_qty": 100.0, "water_qty": 150.0, "tank_size": 15.0})
	if got := metric(t, r, "per_tank_ml"); got != 10 {
		t.Errorf("per_tank_ml = %v, want 10", got)
	}
	if got := metric(t, r, "tanks_needed"); got != 10 {
		t.Errorf("tanks_needed = %v, want 10", got)
	}
	if got := metric(t, r, "total_cost"); got != 60 {
		t.Errorf("total_cost = %v, want 60 at ₹0.6/ml", got)
	}
}

func TestIrrigation_SoilMultiplier(t *testing.T) {
	clay := Irrigation(Fields{"crop": "paddy", "land_area": 2.0, "soil_type": "clay"})
	// 50 × 2 × 0.8 = 80 per cycle, 480 seasonal
	if got := metric(t, clay, "water_per_cycle_kl"); got != 80 {
		t.Errorf("per-cycle water = %v, want 80", got)
	}
	if got := metric(t, clay, "seasonal_kl"); got != 480 {
		t.Errorf("seasonal water = %v, want 480 (6 cycles)", got)
	}
}

func TestMachinery(t *testing.T) {
	r := Machinery(Fields{"machine_type": "tractor", "hours": 4.0, "fuel_price": 90.0})
	// fuel: 4×5×90 = 1800; rental: 4×700 = 2800
	if got := metric(t, r, "fuel_cost"); got != 1800 {
		t.Errorf("fuel_cost = %v, want 1800", got)
	}
	if got := metric(t, r, "rental_cost"); got != 2800 {
		t.Errorf("rental_cost = %v, want 2800", got)
	}
	if got := metric(t, r, "total_cost"); got != 4600 {
		t.Errorf("total_cost = %v, want 4600", got)
	}
}

func TestLabour(t *testing.T) {
	r := Labour(Fields{"workers": 5.0, "daily_rate": 400.0, "days": 3.0})
	if got := metric(t, r, "total_cost"); got != 6000 {
		t.Errorf("total_cost = %v, want 6000", got)
	}
}

func TestEveryCalculator_NeverPanicsOnEmptyInput(t *testing.T) {
	for _, name := range Names() {
		fn, ok := Lookup(name)
		if !ok {
			t.Fatalf("registry lists %q but Lookup fails", name)
		}
		r := fn(Fields{})
		if r == nil {
			t.Fatalf("%s returned nil on empty input", name)
		}
		if len(r.Breakdown) == 0 {
			t.Errorf("%s: breakdown must not be empty", name)
		}
		for _, step := range r.Breakdown {
			if step.Label.En == "" || step.Label.Hi == "" {
				t.Errorf("%s: breakdown labels must be bilingual", name)
			}
		}
		if r.Tips.Action.En == "" || r.Tips.Saving.En == "" || r.Tips.Safety.En == "" {
			t.Errorf("%s: tips must fill action/saving/safety", name)
		}
	}
}

func TestRupees_IndianGrouping(t *testing.T) {
	cases := map[float64]string{
		0:        "₹0",
		999:      "₹999",
		1000:     "₹1,000",
		105499:   "₹1,05,499",
		10000000: "₹1,00,00,000",
		-4500:    "₹-4,500",
	}
	for in, want := range cases {
		if got := rupees(in); got != want {
			t.Errorf("rupees(%v) = %q, want %q", in, got, want)
		}
	}
}
