package service

import (
	"fmt"
	"math"
	"sort"

	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
)

// complianceThreshold is the rate below which a group earns a recommendation.
const complianceThreshold = 80.0

// Summarize aggregates tracking results into the dashboard analytics payload:
// totals, overall compliance, and group breakdowns by weather condition,
// vehicle type and hour of day. Pure function, no external state.
func Summarize(results []*entities.TrackingResult) dto.AnalyticsSummary {
	summary := dto.AnalyticsSummary{
		ByWeather:     make(map[string]dto.GroupBreakdown),
		ByVehicleType: make(map[string]dto.GroupBreakdown),
		ByHour:        make(map[int]dto.GroupBreakdown),
	}

	if len(results) == 0 {
		summary.Recommendations = []dto.Recommendation{}
		return summary
	}

	type bucket struct {
		count         int
		compliant     int
		reactionSum   float64
		reactionCount int
	}

	byWeather := make(map[string]*bucket)
	byVehicle := make(map[string]*bucket)
	byHour := make(map[int]*bucket)

	var compliant int
	var reactionSum float64
	var reactionCount int

	add := func(b *bucket, r *entities.TrackingResult) {
		b.count++
		if r.Compliant() {
			b.compliant++
		}
		if r.ReactionTime != nil {
			b.reactionSum += *r.ReactionTime
			b.reactionCount++
		}
	}

	for _, r := range results {
		if r.Compliant() {
			compliant++
		}
		if r.ReactionTime != nil {
			reactionSum += *r.ReactionTime
			reactionCount++
		}

		weather := r.WeatherCondition
		if weather == "" {
			weather = "unknown"
		}
		if byWeather[weather] == nil {
			byWeather[weather] = &bucket{}
		}
		add(byWeather[weather], r)

		if byVehicle[r.VehicleType] == nil {
			byVehicle[r.VehicleType] = &bucket{}
		}
		add(byVehicle[r.VehicleType], r)

		hour := r.Date.Hour()
		if byHour[hour] == nil {
			byHour[hour] = &bucket{}
		}
		add(byHour[hour], r)
	}

	summary.TotalVehicles = len(results)
	summary.CompliantVehicles = compliant
	summary.ComplianceRate = round1(float64(compliant) / float64(len(results)) * 100)
	if reactionCount > 0 {
		summary.AvgReactionTime = round1(reactionSum / float64(reactionCount))
	}

	breakdown := func(b *bucket) dto.GroupBreakdown {
		gb := dto.GroupBreakdown{
			Count:          b.count,
			ComplianceRate: round1(float64(b.compliant) / float64(b.count) * 100),
		}
		if b.reactionCount > 0 {
			gb.AvgReactionTime = round1(b.reactionSum / float64(b.reactionCount))
		}
		return gb
	}

	for k, b := range byWeather {
		summary.ByWeather[k] = breakdown(b)
	}
	for k, b := range byVehicle {
		summary.ByVehicleType[k] = breakdown(b)
	}
	for k, b := range byHour {
		summary.ByHour[k] = breakdown(b)
	}

	summary.Recommendations = recommend(summary)
	return summary
}

// recommend picks at most one group per category: the lowest-compliance
// weather condition, vehicle type and hour of day, each only when its rate
// falls under the threshold.
func recommend(summary dto.AnalyticsSummary) []dto.Recommendation {
	recommendations := make([]dto.Recommendation, 0, 3)

	if group, rate, ok := lowestGroup(summary.ByWeather); ok && rate < complianceThreshold {
		recommendations = append(recommendations, dto.Recommendation{
			Category: "weather",
			Group:    group,
			Rate:     rate,
			Text:     fmt.Sprintf("Compliance drops to %.1f%% in %s conditions; review signage visibility for this weather.", rate, group),
		})
	}

	if group, rate, ok := lowestGroup(summary.ByVehicleType); ok && rate < complianceThreshold {
		recommendations = append(recommendations, dto.Recommendation{
			Category: "vehicle_type",
			Group:    group,
			Rate:     rate,
			Text:     fmt.Sprintf("%s vehicles comply only %.1f%% of the time; consider targeted enforcement.", group, rate),
		})
	}

	if hour, rate, ok := lowestHour(summary.ByHour); ok && rate < complianceThreshold {
		recommendations = append(recommendations, dto.Recommendation{
			Category: "hour",
			Group:    fmt.Sprintf("%02d:00", hour),
			Rate:     rate,
			Text:     fmt.Sprintf("Compliance is lowest (%.1f%%) around %02d:00; review site conditions at that time.", rate, hour),
		})
	}

	return recommendations
}

func lowestGroup(groups map[string]dto.GroupBreakdown) (string, float64, bool) {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	found := false
	var worstKey string
	var worstRate float64
	for _, k := range keys {
		if !found || groups[k].ComplianceRate < worstRate {
			found = true
			worstKey = k
			worstRate = groups[k].ComplianceRate
		}
	}
	return worstKey, worstRate, found
}

func lowestHour(groups map[int]dto.GroupBreakdown) (int, float64, bool) {
	hours := make([]int, 0, len(groups))
	for h := range groups {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	found := false
	var worstHour int
	var worstRate float64
	for _, h := range hours {
		if !found || groups[h].ComplianceRate < worstRate {
			found = true
			worstHour = h
			worstRate = groups[h].ComplianceRate
		}
	}
	return worstHour, worstRate, found
}

// Correlate computes the Pearson correlation between temperature and reaction
// time over records carrying both fields, plus per-weather compliance.
func Correlate(results []*entities.TrackingResult) dto.CorrelationReport {
	report := dto.CorrelationReport{
		WeatherCompliance: make(map[string]dto.GroupBreakdown),
	}

	var temps, reactions []float64
	for _, r := range results {
		if r.Temperature != nil && r.ReactionTime != nil {
			temps = append(temps, *r.Temperature)
			reactions = append(reactions, *r.ReactionTime)
		}
	}
	report.SampleSize = len(temps)
	report.TemperatureReaction = pearson(temps, reactions)

	summary := Summarize(results)
	for k, v := range summary.ByWeather {
		report.WeatherCompliance[k] = v
	}
	return report
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
