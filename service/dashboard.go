package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
	"synerx-dashboard/repository"
)

// Upstream is the slice of the inference-backend client the dashboard reads.
type Upstream interface {
	Health(ctx context.Context) error
	RecentActivity(ctx context.Context) ([]dto.ActivityEntry, error)
	AnalyticsSummary(ctx context.Context) (*dto.AnalyticsSummary, error)
	AnalyticsAll(ctx context.Context) ([]dto.TrackingRecord, error)
	CorrelationAnalysis(ctx context.Context) (*dto.CorrelationReport, error)
	FilterTracking(ctx context.Context, params url.Values) ([]dto.TrackingRecord, error)
	StorageInfo(ctx context.Context) (*dto.StorageInfo, error)
}

type DashboardService interface {
	SystemStatus(ctx context.Context) dto.SystemStatus
	RecentActivity(ctx context.Context) ([]dto.ActivityEntry, error)
	Summary(ctx context.Context) (dto.AnalyticsSummary, error)
	AllTracking(ctx context.Context) ([]dto.TrackingRecord, error)
	Correlation(ctx context.Context) (dto.CorrelationReport, error)
	FilterTracking(ctx context.Context, vehicleType, weather string, dateFrom, dateTo *time.Time) ([]dto.TrackingRecord, error)
	VideoResults(ctx context.Context, videoId uuid.UUID) (dto.VideoResults, error)
}

var ErrVideoNotFound = errors.New("video not found")

type dashboardService struct {
	repo     repository.Repository
	upstream Upstream
	feed     JobFeed
}

func NewDashboardService(repo repository.Repository, upstream Upstream, feed JobFeed) DashboardService {
	return &dashboardService{
		repo:     repo,
		upstream: upstream,
		feed:     feed,
	}
}

func (s *dashboardService) SystemStatus(ctx context.Context) dto.SystemStatus {
	status := dto.SystemStatus{}

	if err := s.upstream.Health(ctx); err != nil {
		status.Message = err.Error()
	} else {
		status.BackendReachable = true
	}

	for _, job := range s.feed.Snapshot() {
		switch job.Status {
		case constant.JobStatusProcessing:
			status.ActiveJobs++
		case constant.JobStatusQueued:
			status.QueuedJobs++
		}
	}

	if count, err := s.repo.CountVideos(ctx); err == nil {
		status.TotalVideos = count
	}

	if info, err := s.upstream.StorageInfo(ctx); err == nil {
		status.StorageUsedBytes = info.TotalBytes
	}

	return status
}

func (s *dashboardService) RecentActivity(ctx context.Context) ([]dto.ActivityEntry, error) {
	entries, _, err := fetchWithFallback(ctx, "recent-activity",
		s.upstream.RecentActivity,
		func(ctx context.Context) ([]dto.ActivityEntry, error) {
			videos, err := s.repo.RecentVideos(ctx, 10)
			if err != nil {
				return nil, err
			}

			entries := make([]dto.ActivityEntry, 0, len(videos))
			for _, v := range videos {
				entries = append(entries, dto.ActivityEntry{
					VideoId:   v.ID,
					VideoName: v.Name,
					Status:    v.Status,
					Timestamp: v.UpdatedAt,
				})
			}
			return entries, nil
		},
	)
	return entries, err
}

func (s *dashboardService) Summary(ctx context.Context) (dto.AnalyticsSummary, error) {
	summary, _, err := fetchWithFallback(ctx, "analytics-summary",
		func(ctx context.Context) (dto.AnalyticsSummary, error) {
			remote, err := s.upstream.AnalyticsSummary(ctx)
			if err != nil {
				return dto.AnalyticsSummary{}, err
			}
			return *remote, nil
		},
		func(ctx context.Context) (dto.AnalyticsSummary, error) {
			results, err := s.repo.AllTracking(ctx)
			if err != nil {
				return dto.AnalyticsSummary{}, err
			}
			return Summarize(results), nil
		},
	)
	return summary, err
}

func (s *dashboardService) AllTracking(ctx context.Context) ([]dto.TrackingRecord, error) {
	records, _, err := fetchWithFallback(ctx, "analytics-all",
		s.upstream.AnalyticsAll,
		func(ctx context.Context) ([]dto.TrackingRecord, error) {
			results, err := s.repo.AllTracking(ctx)
			if err != nil {
				return nil, err
			}
			return toTrackingRecords(results), nil
		},
	)
	return records, err
}

func (s *dashboardService) Correlation(ctx context.Context) (dto.CorrelationReport, error) {
	report, _, err := fetchWithFallback(ctx, "correlation-analysis",
		func(ctx context.Context) (dto.CorrelationReport, error) {
			remote, err := s.upstream.CorrelationAnalysis(ctx)
			if err != nil {
				return dto.CorrelationReport{}, err
			}
			return *remote, nil
		},
		func(ctx context.Context) (dto.CorrelationReport, error) {
			results, err := s.repo.AllTracking(ctx)
			if err != nil {
				return dto.CorrelationReport{}, err
			}
			return Correlate(results), nil
		},
	)
	return report, err
}

func (s *dashboardService) FilterTracking(ctx context.Context, vehicleType, weather string, dateFrom, dateTo *time.Time) ([]dto.TrackingRecord, error) {
	params := url.Values{}
	if vehicleType != "" {
		params.Set("vehicle_type", vehicleType)
	}
	if weather != "" {
		params.Set("weather_condition", weather)
	}
	if dateFrom != nil {
		params.Set("date_from", dateFrom.Format("2006-01-02"))
	}
	if dateTo != nil {
		params.Set("date_to", dateTo.Format("2006-01-02"))
	}

	records, _, err := fetchWithFallback(ctx, "tracking-filter",
		func(ctx context.Context) ([]dto.TrackingRecord, error) {
			return s.upstream.FilterTracking(ctx, params)
		},
		func(ctx context.Context) ([]dto.TrackingRecord, error) {
			results, err := s.repo.FilterTracking(ctx, vehicleType, weather, dateFrom, dateTo)
			if err != nil {
				return nil, err
			}
			return toTrackingRecords(results), nil
		},
	)
	return records, err
}

// VideoResults is served from the local database only. Tracking rows and
// vehicle counts are persisted by the tracking consumer before the job goes
// terminal, so there is no upstream fallback to take.
func (s *dashboardService) VideoResults(ctx context.Context, videoId uuid.UUID) (dto.VideoResults, error) {
	video, err := s.repo.FindVideoById(ctx, videoId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResults{}, ErrVideoNotFound
		}
		return dto.VideoResults{}, err
	}

	tracking, err := s.repo.TrackingByVideo(ctx, videoId)
	if err != nil {
		return dto.VideoResults{}, err
	}

	counts, err := s.repo.VehicleCountsByVideo(ctx, videoId)
	if err != nil {
		return dto.VideoResults{}, err
	}

	results := dto.VideoResults{
		Video:   videoSummary(video),
		Results: toTrackingRecords(tracking),
		Counts:  make([]dto.VehicleTypeCount, 0, len(counts)),
	}
	for _, c := range counts {
		results.Counts = append(results.Counts, dto.VehicleTypeCount{
			VehicleType: c.VehicleType,
			Count:       c.Count,
		})
	}
	return results, nil
}

func toTrackingRecords(results []*entities.TrackingResult) []dto.TrackingRecord {
	records := make([]dto.TrackingRecord, 0, len(results))
	for _, r := range results {
		records = append(records, dto.TrackingRecord{
			TrackerId:        r.TrackerID,
			VehicleType:      r.VehicleType,
			Status:           string(r.Status),
			Compliance:       r.Compliance,
			ReactionTime:     r.ReactionTime,
			WeatherCondition: r.WeatherCondition,
			Temperature:      r.Temperature,
			VisibleDistance:  r.VisibleDistance,
			Date:             r.Date.Format(time.RFC3339),
		})
	}
	return records
}
