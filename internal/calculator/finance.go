package calculator

import (
	"fmt"
	"math"
)

// Cost categories in display order; ties in the arg-max break toward the
// first listed.
var costCategories = []struct {
	key   string
	label Label
}{
	{"seed", L("Seed", "बीज")},
	{"fertilizer", L("Fertilizer", "खाद")},
	{"pesticide", L("Pesticide", "कीटनाशक")},
	{"labour", L("Labour", "मज़दूरी")},
	{"irrigation", L("Irrigation", "सिंचाई")},
	{"other", L("Other", "अन्य")},
}

// perAcreCostThreshold marks a per-acre spend worth a cost-cutting nudge.
const perAcreCostThreshold = 25000

func CropCost(f Fields) *Result {
	landSize := f.Num("land_size", 1)
	if landSize <= 0 {
		landSize = 1
	}

	total := 0.0
	values := map[string]float64{}
	for _, c := range costCategories {
		v := f.Num(c.key, 0)
		if v < 0 {
			v = 0
		}
		values[c.key] = v
		total += v
	}

	perAcre := round(total / landSize)

	highest := costCategories[0]
	for _, c := range costCategories[1:] {
		if values[c.key] > values[highest.key] {
			highest = c
		}
	}

	steps := []Step{
		{L("Total cultivation cost", "कुल खेती लागत"), rupees(total)},
		{L("Cost per acre", "प्रति एकड़ लागत"), rupees(perAcre)},
	}
	for _, c := range costCategories {
		share := pct(values[c.key], total)
		steps = append(steps, Step{
			Label: c.label,
			Value: fmt.Sprintf("%s (%d%%)", rupees(values[c.key]), int(share)),
		})
	}

	tips := Tips{
		Action: L(
			fmt.Sprintf("%s is your biggest cost head — review it first.", highest.label.En),
			fmt.Sprintf("%s आपका सबसे बड़ा खर्च है — पहले इसकी समीक्षा करें।", highest.label.Hi),
		),
		Saving: L(
			"Buy inputs from cooperative societies to save 10-15% over retail.",
			"सहकारी समिति से खाद-बीज खरीदें, खुदरा से 10-15% बचत होगी।",
		),
		Safety: L(
			"Keep purchase receipts — they are needed for insurance claims.",
			"खरीद की रसीदें संभाल कर रखें — बीमा दावे में काम आती हैं।",
		),
	}
	if perAcre > perAcreCostThreshold {
		tips.Saving = L(
			"Per-acre cost is above the regional average; consider soil testing before the next fertilizer purchase.",
			"प्रति एकड़ लागत औसत से अधिक है; अगली खाद खरीद से पहले मिट्टी जाँच कराएँ।",
		)
	}

	return &Result{
		Metrics: map[string]float64{
			"total_cost":        total,
			"cost_per_acre":     perAcre,
			"highest_cost":      values[highest.key],
			"highest_share_pct": pct(values[highest.key], total),
		},
		Highlight: highest.key,
		Breakdown: steps,
		Tips:      tips,
	}
}

func Profit(f Fields) *Result {
	yield := f.Num("yield", 0)
	rate := f.Num("rate", 0)
	cost := f.Num("cost", 0)

	revenue := yield * rate
	netProfit := revenue - cost

	margin := pct(netProfit, revenue)
	roi := pct(netProfit, cost)

	breakEven := 0.0
	if yield > 0 {
		breakEven = round(cost / yield)
	}

	steps := []Step{
		{L("Revenue (yield × rate)", "आय (उपज × भाव)"), rupees(revenue)},
		{L("Total cost", "कुल लागत"), rupees(cost)},
		{L("Net profit", "शुद्ध लाभ"), rupees(netProfit)},
		{L("Profit margin", "लाभ मार्जिन"), fmt.Sprintf("%d%%", int(margin))},
		{L("Return on investment", "निवेश पर प्रतिफल"), fmt.Sprintf("%d%%", int(roi))},
		{L("Break-even rate", "लागत बराबरी भाव"), rupees(breakEven) + "/quintal"},
	}

	var tips Tips
	if netProfit >= 0 {
		tips = Tips{
			Action: L(
				"You are in profit. Compare mandi rates before selling the full lot.",
				"आप लाभ में हैं। पूरी उपज बेचने से पहले मंडी भाव मिलाएँ।",
			),
			Saving: L(
				"Selling above the break-even rate keeps every quintal profitable.",
				"लागत बराबरी भाव से ऊपर बेचने पर हर क्विंटल लाभ देता है।",
			),
			Safety: L(
				"Check the MSP for your crop — never sell below the government floor price.",
				"अपनी फसल का MSP देखें — सरकारी न्यूनतम मूल्य से नीचे न बेचें।",
			),
		}
	} else {
		tips = Tips{
			Action: L(
				"This crop is running at a loss — review the largest cost heads before the next season.",
				"यह फसल घाटे में है — अगले मौसम से पहले बड़े खर्चों की समीक्षा करें।",
			),
			Saving: L(
				fmt.Sprintf("You need at least %s/quintal to break even.", rupees(breakEven)),
				fmt.Sprintf("लागत निकालने के लिए कम से कम %s/क्विंटल भाव चाहिए।", rupees(breakEven)),
			),
			Safety: L(
				"Consider storage if prices are seasonal lows; distress sale locks in the loss.",
				"भाव नीचे हों तो भंडारण पर विचार करें; मजबूरी में बेचने से घाटा पक्का होता है।",
			),
		}
	}

	return &Result{
		Metrics: map[string]float64{
			"revenue":           revenue,
			"net_profit":        netProfit,
			"profit_margin_pct": margin,
			"roi_pct":           roi,
			"break_even_rate":   breakEven,
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

func LoanEMI(f Fields) *Result {
	principal := f.Num("principal", 100000)
	annualRate := f.Num("annual_rate", 10)
	months := f.Num("tenure_months", 12)
	if months <= 0 {
		months = 12
	}

	r := annualRate / 12 / 100

	// Standard amortization; degenerates to straight division at 0% so the
	// formula never divides by zero.
	var emi float64
	if r == 0 {
		emi = principal / months
	} else {
		pow := math.Pow(1+r, months)
		emi = principal * r * pow / (pow - 1)
	}

	totalPayment := round(emi * months)
	totalInterest := totalPayment - round(principal)

	steps := []Step{
		{L("Loan amount", "ऋण राशि"), rupees(principal)},
		{L("Monthly interest rate", "मासिक ब्याज दर"), fmt.Sprintf("%.4f%%", r*100)},
		{L("Monthly EMI", "मासिक किस्त"), rupees(emi)},
		{L("Total payment", "कुल भुगतान"), rupees(totalPayment)},
		{L("Total interest", "कुल ब्याज"), rupees(totalInterest)},
	}

	tips := Tips{
		Action: L(
			fmt.Sprintf("Set aside %s every month before other spending.", rupees(emi)),
			fmt.Sprintf("हर महीने %s अन्य खर्चों से पहले अलग रखें।", rupees(emi)),
		),
		Saving: L(
			"Kisan Credit Card loans up to ₹3 lakh carry subsidised interest — compare before borrowing privately.",
			"₹3 लाख तक के किसान क्रेडिट कार्ड ऋण पर ब्याज सब्सिडी मिलती है — निजी उधार से पहले तुलना करें।",
		),
		Safety: L(
			"Never borrow against land papers from unregistered lenders.",
			"अपंजीकृत साहूकार के पास ज़मीन के कागज़ गिरवी न रखें।",
		),
	}
	if pct(totalInterest, principal) > 20 {
		tips.Saving = L(
			"Total interest exceeds 20% of the loan — a shorter tenure or bank refinance would cost less.",
			"कुल ब्याज ऋण का 20% से अधिक है — छोटी अवधि या बैंक से पुनर्वित्त सस्ता पड़ेगा।",
		)
	}

	return &Result{
		Metrics: map[string]float64{
			"emi":            round(emi),
			"total_payment":  totalPayment,
			"total_interest": totalInterest,
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

func Labour(f Fields) *Result {
	workers := f.Num("workers", 1)
	dailyRate := f.Num("daily_rate", 350)
	days := f.Num("days", 1)

	total := workers * dailyRate * days

	steps := []Step{
		{L("Workers", "मज़दूर"), qty(workers, "")},
		{L("Daily wage", "दैनिक मज़दूरी"), rupees(dailyRate)},
		{L("Days", "दिन"), qty(days, "")},
		{L("Total labour cost", "कुल मज़दूरी खर्च"), rupees(total)},
	}

	tips := Tips{
		Action: L(
			"Agree wages and working hours before work starts.",
			"काम शुरू होने से पहले मज़दूरी और समय तय कर लें।",
		),
		Saving: L(
			"Piece-rate contracts for harvesting often cost less than daily wages.",
			"कटाई में ठेका (प्रति बीघा) दिहाड़ी से सस्ता पड़ सकता है।",
		),
		Safety: L(
			"Provide drinking water and shade during summer field work.",
			"गर्मी में खेत पर पीने का पानी और छाया की व्यवस्था रखें।",
		),
	}
	if total > 15000 {
		tips.Saving = L(
			"Labour cost is high for one operation — compare with machine rental for the same job.",
			"एक काम के लिए मज़दूरी खर्च अधिक है — उसी काम के लिए मशीन किराये से तुलना करें।",
		)
	}

	return &Result{
		Metrics: map[string]float64{
			"total_cost": round(total),
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

// Machine rental rates (₹/hour) and diesel consumption (litres/hour).
var machineRates = map[string]struct {
	rental      float64
	consumption float64
}{
	"tractor":   {700, 5},
	"harvester": {2500, 12},
	"rotavator": {900, 6},
	"thresher":  {600, 4},
}

var defaultMachine = struct {
	rental      float64
	consumption float64
}{800, 5}

func Machinery(f Fields) *Result {
	machine := f.Str("machine_type", "tractor")
	hours := f.Num("hours", 1)
	fuelPrice := f.Num("fuel_price", 92)

	rates, ok := machineRates[machine]
	if !ok {
		rates = defaultMachine
	}
	consumption := f.Num("consumption_rate", rates.consumption)

	fuelCost := hours * consumption * fuelPrice
	rentalCost := hours * rates.rental
	total := fuelCost + rentalCost

	steps := []Step{
		{L("Diesel used", "डीज़ल खपत"), qty(round(hours*consumption), "litres")},
		{L("Fuel cost", "ईंधन खर्च"), rupees(fuelCost)},
		{L("Rental cost", "किराया"), rupees(rentalCost)},
		{L("Total cost", "कुल खर्च"), rupees(total)},
	}

	tips := Tips{
		Action: L(
			"Book machines early in the season; rates rise at peak demand.",
			"मौसम की शुरुआत में ही मशीन बुक करें; पीक पर किराया बढ़ता है।",
		),
		Saving: L(
			"Custom hiring centres (CHC) rent implements below market rates.",
			"कस्टम हायरिंग सेंटर (CHC) से बाज़ार से सस्ता किराया मिलता है।",
		),
		Safety: L(
			"Check PTO guards and brakes before operating rented machinery.",
			"किराये की मशीन चलाने से पहले PTO गार्ड और ब्रेक जाँचें।",
		),
	}

	return &Result{
		Metrics: map[string]float64{
			"fuel_cost":   round(fuelCost),
			"rental_cost": round(rentalCost),
			"total_cost":  round(total),
		},
		Breakdown: steps,
		Tips:      tips,
	}
}

func Storage(f Fields) *Result {
	quantity := f.Num("quantity", 1)
	monthlyRate := f.Num("storage_rate", 60)
	days := f.Num("days", 30)

	dailyRate := monthlyRate / 30
	total := round(quantity * dailyRate * days)

	steps := []Step{
		{L("Quantity", "मात्रा"), qty(quantity, "quintal")},
		{L("Daily rate", "दैनिक दर"), fmt.Sprintf("₹%.2f/quintal", dailyRate)},
		{L("Storage days", "भंडारण दिन"), qty(days, "")},
		{L("Total storage cost", "कुल भंडारण खर्च"), rupees(total)},
	}

	tips := Tips{
		Action: L(
			"Get a warehouse receipt — it doubles as loan collateral.",
			"गोदाम रसीद ज़रूर लें — यह ऋण के लिए गिरवी का काम करती है।",
		),
		Saving: L(
			"Storage pays only if the expected price rise beats the storage cost.",
			"भंडारण तभी फायदेमंद है जब भाव की बढ़त भंडारण खर्च से अधिक हो।",
		),
		Safety: L(
			"Dry grain below 12% moisture before storage to prevent fungus.",
			"भंडारण से पहले अनाज को 12% नमी से कम सुखाएँ, फफूंद से बचाव होगा।",
		),
	}
	if days > 90 {
		tips.Saving = L(
			"For storage beyond 3 months, compare government warehouse rates — they are usually cheaper.",
			"3 महीने से अधिक भंडारण पर सरकारी गोदाम की दरें देखें — प्रायः सस्ती होती हैं।",
		)
	}

	return &Result{
		Metrics: map[string]float64{
			"daily_rate": dailyRate,
			"total_cost": total,
		},
		Breakdown: steps,
		Tips:      tips,
	}
}
