package service

import (
	"math"
	"testing"
	"time"

	"synerx-dashboard/constant"
	"synerx-dashboard/entities"
)

func result(vehicleType, weather string, compliance int, reaction float64, hour int) *entities.TrackingResult {
	r := &entities.TrackingResult{
		VehicleType:      vehicleType,
		Status:           constant.VehicleStatusMoving,
		Compliance:       compliance,
		WeatherCondition: weather,
		Date:             time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC),
	}
	if reaction > 0 {
		r.ReactionTime = &reaction
	}
	return r
}

func TestSummarizeTotalsAndCompliance(t *testing.T) {
	results := []*entities.TrackingResult{
		result("car", "clear", 1, 1.2, 9),
		result("car", "clear", 1, 1.4, 9),
		result("truck", "rain", 0, 2.0, 17),
	}

	summary := Summarize(results)

	if summary.TotalVehicles != 3 {
		t.Fatalf("expected total 3, got %d", summary.TotalVehicles)
	}
	if summary.CompliantVehicles != 2 {
		t.Fatalf("expected 2 compliant, got %d", summary.CompliantVehicles)
	}

	// 2/3 * 100 rounded to one decimal
	if summary.ComplianceRate != 66.7 {
		t.Fatalf("expected compliance 66.7, got %v", summary.ComplianceRate)
	}
}

func TestSummarizeGroupBreakdowns(t *testing.T) {
	results := []*entities.TrackingResult{
		result("car", "clear", 1, 1.0, 8),
		result("car", "rain", 0, 3.0, 8),
		result("truck", "rain", 0, 2.0, 20),
	}

	summary := Summarize(results)

	rain, ok := summary.ByWeather["rain"]
	if !ok {
		t.Fatalf("expected rain group")
	}
	if rain.Count != 2 || rain.ComplianceRate != 0 {
		t.Fatalf("unexpected rain breakdown: %+v", rain)
	}
	if rain.AvgReactionTime != 2.5 {
		t.Fatalf("expected rain avg reaction 2.5, got %v", rain.AvgReactionTime)
	}

	car, ok := summary.ByVehicleType["car"]
	if !ok {
		t.Fatalf("expected car group")
	}
	if car.Count != 2 || car.ComplianceRate != 50.0 {
		t.Fatalf("unexpected car breakdown: %+v", car)
	}

	if _, ok := summary.ByHour[8]; !ok {
		t.Fatalf("expected hour 8 group")
	}
	if _, ok := summary.ByHour[20]; !ok {
		t.Fatalf("expected hour 20 group")
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	summary := Summarize(nil)

	if summary.TotalVehicles != 0 || summary.ComplianceRate != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
	if len(summary.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(summary.Recommendations))
	}
}

func TestRecommendationsThreshold(t *testing.T) {
	// Everything above 80% compliance: no recommendations.
	allGood := []*entities.TrackingResult{
		result("car", "clear", 1, 1.0, 9),
		result("car", "clear", 1, 1.0, 9),
		result("car", "clear", 1, 1.0, 9),
		result("car", "clear", 1, 1.0, 9),
		result("car", "clear", 0, 1.0, 9),
	}
	if recs := Summarize(allGood).Recommendations; len(recs) != 0 {
		t.Fatalf("expected no recommendations at 80%%, got %d", len(recs))
	}

	// Rain drags one weather group under the threshold.
	mixed := []*entities.TrackingResult{
		result("car", "clear", 1, 1.0, 9),
		result("car", "clear", 1, 1.0, 9),
		result("car", "rain", 0, 2.0, 9),
		result("car", "rain", 0, 2.0, 9),
	}

	recs := Summarize(mixed).Recommendations
	if len(recs) == 0 {
		t.Fatalf("expected recommendations for low-compliance groups")
	}
	if len(recs) > 3 {
		t.Fatalf("expected at most 3 recommendations, got %d", len(recs))
	}

	var weatherRec *string
	for i := range recs {
		if recs[i].Category == "weather" {
			weatherRec = &recs[i].Group
		}
	}
	if weatherRec == nil || *weatherRec != "rain" {
		t.Fatalf("expected rain weather recommendation, got %+v", recs)
	}
}

func TestCorrelatePerfectNegative(t *testing.T) {
	temps := []float64{10, 20, 30, 40}
	reactions := []float64{4, 3, 2, 1}

	results := make([]*entities.TrackingResult, 0, len(temps))
	for i := range temps {
		r := result("car", "clear", 1, reactions[i], 10)
		r.Temperature = &temps[i]
		results = append(results, r)
	}

	report := Correlate(results)
	if report.SampleSize != 4 {
		t.Fatalf("expected sample size 4, got %d", report.SampleSize)
	}
	if math.Abs(report.TemperatureReaction+1) > 1e-9 {
		t.Fatalf("expected correlation -1, got %v", report.TemperatureReaction)
	}
}

func TestCorrelateInsufficientSamples(t *testing.T) {
	report := Correlate([]*entities.TrackingResult{result("car", "clear", 1, 1.0, 9)})
	if report.TemperatureReaction != 0 {
		t.Fatalf("expected zero correlation with no paired samples, got %v", report.TemperatureReaction)
	}
}
