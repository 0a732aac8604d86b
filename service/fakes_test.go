package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
	"synerx-dashboard/repository"
)

// fakeRepo overrides the methods under test; everything else panics via the
// embedded nil interface.
type fakeRepo struct {
	repository.Repository

	tracking   []*entities.TrackingResult
	videos     []*entities.Video
	counts     []*entities.VehicleCount
	job        *entities.Job
	videoCount int64

	jobUpdates   []uuid.UUID
	videoUpdates []uuid.UUID

	trackingErr error
}

func (f *fakeRepo) AllTracking(ctx context.Context) ([]*entities.TrackingResult, error) {
	if f.trackingErr != nil {
		return nil, f.trackingErr
	}
	return f.tracking, nil
}

func (f *fakeRepo) FilterTracking(ctx context.Context, vehicleType, weather string, dateFrom, dateTo *time.Time) ([]*entities.TrackingResult, error) {
	return f.tracking, nil
}

func (f *fakeRepo) RecentVideos(ctx context.Context, limit int) ([]*entities.Video, error) {
	return f.videos, nil
}

func (f *fakeRepo) FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) TrackingByVideo(ctx context.Context, videoId uuid.UUID) ([]*entities.TrackingResult, error) {
	return f.tracking, nil
}

func (f *fakeRepo) VehicleCountsByVideo(ctx context.Context, videoId uuid.UUID) ([]*entities.VehicleCount, error) {
	return f.counts, nil
}

func (f *fakeRepo) FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	if f.job != nil && f.job.ID == id {
		return f.job, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CountVideos(ctx context.Context) (int64, error) {
	return f.videoCount, nil
}

func (f *fakeRepo) UpdateJobStatus(ctx context.Context, id uuid.UUID, status constant.JobStatus, progress int, message string, elapsed float64) error {
	f.jobUpdates = append(f.jobUpdates, id)
	return nil
}

func (f *fakeRepo) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status constant.VideoStatus, progress int) error {
	f.videoUpdates = append(f.videoUpdates, id)
	return nil
}

type fakeCanceller struct {
	cancelled []string
	err       error
}

func (f *fakeCanceller) CancelJob(ctx context.Context, jobId string) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, jobId)
	return nil
}

type fakePublisher struct {
	published []dto.JobMessage
	err       error
}

func (f *fakePublisher) PublishJob(ctx context.Context, message dto.JobMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}
