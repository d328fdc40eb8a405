package calculator

import (
	"fmt"
	"math"
)

// Seed rates (kg/acre, ICAR reference) and seed prices (₹/kg).
var seedRates = map[string]float64{
	"wheat":     40,
	"paddy":     20,
	"rice":      20,
	"maize":     8,
	"cotton":    1.5,
	"soybean":   30,
	"mustard":   2,
	"gram":      30,
	"groundnut": 60,
	"bajra":     2,
}

var seedPrices = map[string]float64{
	"wheat":     32,
	"paddy":     45,
	"rice":      45,
	"maize":     120,
	"cotton":    900,
	"soybean":   90,
	"mustard":   110,
	"gram":      85,
	"groundnut": 110,
	"bajra":     150,
}

const (
	defaultSeedRate  = 10
	defaultSeedPrice = 60
)

func SeedRequirement(f Fields) *Result {
	crop := f.Str("crop", "wheat")
	area := f.Num("land_area", 1)

	rate, ok := seedRates[crop]
	if !ok {
		rate = defaultSeedRate
	}
	price, ok := seedPrices[crop]
	if !ok {
		price = defaultSeedPrice
	}

	seedKg := rate * area
	cost := round(seedKg * price)

	steps := []Step{
		{L("Seed rate", "बीज दर"), qty(rate, "kg/acre")},
		{L("Seed needed", "आवश्यक बीज"), qty(seedKg, "kg")},
		{L("Seed price", "बीज भाव"), rupees(price) + "/kg"},
		{L("Estimated cost", "अनुमानित खर्च"), rupees(cost)},
	}

	tips := Tips{
		Action: L(
			"Buy certified seed with a bill from a licensed dealer.",
			"लाइसेंसी विक्रेता से बिल के साथ प्रमाणित बीज खरीदें।",
		),
		Saving: L(
			"Certified seed costs more but yields 15-20% over saved grain seed.",
			"प्रमाणित बीज महँगा है पर घर के बीज से 15-20% अधिक उपज देता है।",
		),
		Safety: L(
			"Treat seed with recommended fungicide before sowing.",
			"बुवाई से पहले बीज को अनुशंसित फफूंदनाशक से उपचारित करें।",
		),
	}

	return &Result{
		Metrics: map[string]float64{
			"seed_kg":     seedKg,
			"rate_per_kg": price,
			"total_cost":  cost,
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

// Fertilizer base doses in 50 kg bags per acre (urea, DAP, MOP) and bag
// prices at the subsidised rate.
var fertilizerDoses = map[string][3]float64{
	"wheat":     {2.2, 1.0, 0.5},
	"paddy":     {2.5, 1.0, 0.6},
	"rice":      {2.5, 1.0, 0.6},
	"maize":     {2.0, 1.1, 0.7},
	"cotton":    {2.8, 1.2, 0.8},
	"sugarcane": {4.0, 1.5, 1.0},
}

var defaultDose = [3]float64{2.0, 1.0, 0.5}

var bagPrices = [3]float64{266, 1350, 1700} // urea, DAP, MOP

var fertilizerNames = [3]Label{
	L("Urea", "यूरिया"),
	L("DAP", "डीएपी"),
	L("MOP", "एमओपी"),
}

// Soil multipliers: sandy soils leach nutrients, heavy soils retain them.
func soilMultiplier(soil string, sandy, heavy float64) float64 {
	switch soil {
	case "sandy":
		return sandy
	case "black", "clay":
		return heavy
	default:
		return 1.0
	}
}

// halfBags rounds a bag count up to the nearest half bag.
func halfBags(bags float64) float64 {
	return math.Ceil(bags*2) / 2
}

func FertilizerRequirement(f Fields) *Result {
	crop := f.Str("crop", "wheat")
	area := f.Num("land_area", 1)
	soil := f.Str("soil_type", "loam")

	dose, ok := fertilizerDoses[crop]
	if !ok {
		dose = defaultDose
	}
	mult := soilMultiplier(soil, 1.15, 0.85)

	total := 0.0
	var steps []Step
	bags := [3]float64{}
	for i := 0; i < 3; i++ {
		bags[i] = halfBags(dose[i] * area * mult)
		cost := bags[i] * bagPrices[i]
		total += cost
		steps = append(steps, Step{
			Label: fertilizerNames[i],
			Value: fmt.Sprintf("%s bags (%s)", qty(bags[i], ""), rupees(cost)),
		})
	}
	steps = append(steps, Step{L("Total fertilizer cost", "कुल खाद खर्च"), rupees(total)})

	tips := Tips{
		Action: L(
			"Apply urea in split doses, not all at sowing.",
			"यूरिया एक साथ नहीं, किस्तों में डालें।",
		),
		Saving: L(
			"A soil health card can cut fertilizer use by a quarter.",
			"मृदा स्वास्थ्य कार्ड से खाद की खपत चौथाई तक घट सकती है।",
		),
		Safety: L(
			"Store fertilizer away from seed and feed; keep bags off damp floors.",
			"खाद को बीज व चारे से दूर, नमी से बचाकर रखें।",
		),
	}
	if soil == "sandy" {
		tips.Action = L(
			"Sandy soil leaches nitrogen fast — apply urea in three splits.",
			"रेतीली मिट्टी में नाइट्रोजन जल्दी बह जाता है — यूरिया तीन किस्तों में डालें।",
		)
	}

	return &Result{
		Metrics: map[string]float64{
			"urea_bags":  bags[0],
			"dap_bags":   bags[1],
			"mop_bags":   bags[2],
			"total_cost": round(total),
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

// pesticideRatePerML approximates pesticide cost at a fixed ₹/ml rate.
const pesticideRatePerML = 0.6

func PesticideDilution(f Fields) *Result {
	pesticideQty := f.Num("pesticide_qty", 100) // ml
	waterQty := f.Num("water_qty", 150)         // litres
	tankSize := f.Num("tank_size", 15)          // litres
	if waterQty <= 0 {
		waterQty = 150
	}
	if tankSize <= 0 {
		tankSize = 15
	}

	perTank := round(pesticideQty / waterQty * tankSize)
	tanks := math.Ceil(waterQty / tankSize)
	cost := round(pesticideQty * pesticideRatePerML)

	steps := []Step{
		{L("Pesticide per tank", "प्रति टंकी दवा"), qty(perTank, "ml")},
		{L("Tanks needed", "टंकियों की संख्या"), qty(tanks, "")},
		{L("Estimated cost", "अनुमानित खर्च"), rupees(cost)},
	}

	tips := Tips{
		Action: L(
			fmt.Sprintf("Measure %s per %s-litre tank with a marked cup, never by guess.", qty(perTank, "ml"), qty(tankSize, "")),
			fmt.Sprintf("हर %s लीटर टंकी में %s दवा नापकर डालें, अंदाज़े से नहीं।", qty(tankSize, ""), qty(perTank, "ml")),
		),
		Saving: L(
			"Overdosing wastes money and breeds resistance; stick to the label dose.",
			"अधिक दवा पैसे की बर्बादी है और कीट प्रतिरोधी बनते हैं; लेबल की मात्रा ही डालें।",
		),
		Safety: L(
			"Wear mask and gloves; spray along the wind, never against it.",
			"मास्क व दस्ताने पहनें; हवा की दिशा में छिड़काव करें, उल्टी दिशा में कभी नहीं।",
		),
	}

	return &Result{
		Metrics: map[string]float64{
			"per_tank_ml":  perTank,
			"tanks_needed": tanks,
			"total_cost":   cost,
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

// Irrigation base water need per cycle (kilolitres/acre).
var irrigationRates = map[string]float64{
	"paddy":     50,
	"rice":      50,
	"sugarcane": 45,
	"wheat":     25,
	"maize":     22,
	"cotton":    30,
}

const (
	defaultIrrigationRate = 25
	irrigationCycles      = 6
)

func Irrigation(f Fields) *Result {
	crop := f.Str("crop", "wheat")
	area := f.Num("land_area", 1)
	soil := f.Str("soil_type", "loam")

	base, ok := irrigationRates[crop]
	if !ok {
		base = defaultIrrigationRate
	}
	mult := soilMultiplier(soil, 1.3, 0.8)

	perCycle := base * area * mult
	seasonal := perCycle * irrigationCycles

	steps := []Step{
		{L("Water per irrigation", "प्रति सिंचाई पानी"), qty(round(perCycle), "kilolitres")},
		{L("Irrigation cycles", "सिंचाई चक्र"), qty(irrigationCycles, "")},
		{L("Seasonal estimate", "मौसमी अनुमान"), qty(round(seasonal), "kilolitres")},
	}

	tips := Tips{
		Action: L(
			"Irrigate at the crop's critical stages first if water is short.",
			"पानी कम हो तो फसल की नाज़ुक अवस्थाओं में पहले सिंचाई करें।",
		),
		Saving: L(
			"Drip irrigation saves up to 40% water and carries a state subsidy.",
			"ड्रिप सिंचाई से 40% तक पानी बचता है और सब्सिडी भी मिलती है।",
		),
		Safety: L(
			"Avoid waterlogging — standing water invites root rot.",
			"जलभराव से बचें — खड़ा पानी जड़ सड़न लाता है।",
		),
	}
	if soil == "sandy" {
		tips.Action = L(
			"Sandy soil drains fast — give lighter, more frequent irrigations.",
			"रेतीली मिट्टी में पानी जल्दी रिसता है — हल्की और बार-बार सिंचाई करें।",
		)
	}

	return &Result{
		Metrics: map[string]float64{
			"water_per_cycle_kl": round(perCycle),
			"seasonal_kl":        round(seasonal),
		},
		Breakdown: steps,
		Tips:      tips,
	}
}
