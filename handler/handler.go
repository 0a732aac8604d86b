package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
	"synerx-dashboard/repository"
	"synerx-dashboard/service"
)

type ServiceDependencies struct {
	Feed     service.JobFeed
	Repo     repository.Repository
	Playback service.PlaybackService
}

// JobProgressHandler applies a progress event from the inference backend to
// the job feed.
func JobProgressHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var progress dto.JobProgressMessage
	if err := json.Unmarshal(msg.Body, &progress); err != nil {
		return err
	}

	if err := deps.Feed.ApplyProgress(ctx, progress); err != nil {
		return err
	}

	// Completed or failed jobs change what the video browser shows.
	if progress.Status.Terminal() && deps.Playback != nil {
		deps.Playback.Invalidate()
	}

	return nil
}

// TrackingResultsHandler persists a batch of detected-vehicle events for a
// finished job and rolls the aggregate onto the video row.
func TrackingResultsHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var batch dto.TrackingBatchMessage
	if err := json.Unmarshal(msg.Body, &batch); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal tracking batch")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("video_id", batch.VideoId.String()).
		Int("results", len(batch.Results)).
		Msg("received tracking batch")

	results := make([]*entities.TrackingResult, 0, len(batch.Results))
	counts := make(map[string]int)
	compliant := 0
	for _, r := range batch.Results {
		date, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			date = time.Now()
		}

		results = append(results, &entities.TrackingResult{
			VideoID:          batch.VideoId,
			VehicleType:      r.VehicleType,
			Status:           constant.VehicleStatus(r.Status),
			Compliance:       r.Compliance,
			ReactionTime:     r.ReactionTime,
			WeatherCondition: r.WeatherCondition,
			Temperature:      r.Temperature,
			VisibleDistance:  r.VisibleDistance,
			Date:             date,
		})
		counts[r.VehicleType]++
		if r.Compliance == 1 {
			compliant++
		}
	}

	if err := deps.Repo.InsertTrackingResults(ctx, results); err != nil {
		return err
	}

	vehicleCounts := make([]*entities.VehicleCount, 0, len(counts))
	now := time.Now()
	for vehicleType, count := range counts {
		vehicleCounts = append(vehicleCounts, &entities.VehicleCount{
			VideoID:     batch.VideoId,
			VehicleType: vehicleType,
			Count:       count,
			Date:        now,
		})
	}
	if err := deps.Repo.InsertVehicleCounts(ctx, vehicleCounts); err != nil {
		return err
	}

	complianceRate := 0.0
	if len(batch.Results) > 0 {
		complianceRate = float64(compliant) / float64(len(batch.Results)) * 100
	}
	if err := deps.Repo.UpdateVideoResults(ctx, batch.VideoId, len(batch.Results), complianceRate, ""); err != nil {
		return err
	}

	if deps.Playback != nil {
		deps.Playback.Invalidate()
	}

	return nil
}
