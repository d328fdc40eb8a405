// Package calculator holds the farm calculators: pure functions from a
// flat field map to headline metrics, a bilingual step-by-step breakdown
// and guidance tips. Calculators never reject input — missing or
// non-numeric fields fall back to documented defaults.
package calculator

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Fields is the raw request body. Values arrive as JSON numbers or strings.
type Fields map[string]any

// Num returns the numeric value of a field, or def when the field is
// missing, non-numeric or NaN. This is the single fallback point: the
// formula code below only ever sees well-typed numbers.
func (f Fields) Num(key string, def float64) float64 {
	v, ok := f[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return def
		}
		return n
	case int:
		return float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return def
		}
		return parsed
	default:
		return def
	}
}

// Str returns the string value of a field, lowercased, or def when absent.
func (f Fields) Str(key, def string) string {
	if v, ok := f[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return def
}

// Label is a bilingual (English/Hindi) display string.
type Label struct {
	En string `json:"en"`
	Hi string `json:"hi"`
}

func L(en, hi string) Label {
	return Label{En: en, Hi: hi}
}

// Step is one line of the ordered computation breakdown.
type Step struct {
	Label Label  `json:"label"`
	Value string `json:"value"`
}

// Tips carries the three fixed guidance slots.
type Tips struct {
	Action Label `json:"action"`
	Saving Label `json:"saving"`
	Safety Label `json:"safety"`
}

type Result struct {
	Metrics   map[string]float64 `json:"metrics"`
	Highlight string             `json:"highlight,omitempty"`
	Breakdown []Step             `json:"breakdown"`
	Tips      Tips               `json:"tips"`
}

// Func is a calculator: pure, stateless, never fails on malformed input.
type Func func(Fields) *Result

var registry = map[string]Func{
	"cropcost":   CropCost,
	"profit":     Profit,
	"emi":        LoanEMI,
	"seed":       SeedRequirement,
	"fertilizer": FertilizerRequirement,
	"pesticide":  PesticideDilution,
	"irrigation": Irrigation,
	"machinery":  Machinery,
	"labour":     Labour,
	"storage":    Storage,
}

// Lookup returns the named calculator, or false for an unknown name.
func Lookup(name string) (Func, bool) {
	fn, ok := registry[strings.ToLower(name)]
	return fn, ok
}

// Names lists registered calculators in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func round(x float64) float64 {
	return math.Round(x)
}

// pct computes round(100*part/whole), or 0 when whole is 0.
func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round(100 * part / whole)
}

// rupees formats a whole-rupee amount with Indian digit grouping
// (1,05,499 rather than 105,499).
func rupees(amount float64) string {
	n := int64(round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return "₹" + sign + s
	}

	head := s[:len(s)-3]
	tail := s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return "₹" + sign + strings.Join(parts, ",") + "," + tail
}

func qty(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return fmt.Sprintf("%s %s", s, unit)
}
