package service

import (
	"context"
	"fmt"
	"sync"

	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
	"synerx-dashboard/repository"
)

// PlaybackService serves the paginated video browser. Pages are cached keyed
// by the full filter+pagination tuple; the cache is dropped wholesale on
// Invalidate (filter change, upload, delete).
type PlaybackService interface {
	Page(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error)
	Invalidate()
}

type pageLoader func(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error)

type playbackService struct {
	loader pageLoader

	mu    sync.Mutex
	cache map[string]dto.VideoPage
}

func NewPlaybackService(repo repository.Repository) PlaybackService {
	return newPlaybackService(func(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error) {
		videos, total, err := repo.ListVideos(ctx, filter)
		if err != nil {
			return dto.VideoPage{}, err
		}

		page := dto.VideoPage{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalCount: total,
			Videos:     make([]dto.VideoSummary, 0, len(videos)),
		}
		for _, v := range videos {
			page.Videos = append(page.Videos, videoSummary(v))
		}
		return page, nil
	})
}

func videoSummary(v *entities.Video) dto.VideoSummary {
	return dto.VideoSummary{
		Id:              v.ID,
		Name:            v.Name,
		Status:          v.Status,
		Progress:        v.Progress,
		DurationSeconds: v.DurationSeconds,
		SizeBytes:       v.SizeBytes,
		TotalVehicles:   v.TotalVehicles,
		ComplianceRate:  v.ComplianceRate,
		CreatedAt:       v.CreatedAt,
	}
}

func newPlaybackService(loader pageLoader) *playbackService {
	return &playbackService{
		loader: loader,
		cache:  make(map[string]dto.VideoPage),
	}
}

func (s *playbackService) Page(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error) {
	key := cacheKey(filter)

	s.mu.Lock()
	if page, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return page, nil
	}
	s.mu.Unlock()

	page, err := s.loader(ctx, filter)
	if err != nil {
		return dto.VideoPage{}, err
	}

	s.mu.Lock()
	s.cache[key] = page
	s.mu.Unlock()

	return page, nil
}

func (s *playbackService) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]dto.VideoPage)
	s.mu.Unlock()
}

func cacheKey(filter dto.VideoFilter) string {
	from, to := "", ""
	if filter.DateFrom != nil {
		from = filter.DateFrom.Format("2006-01-02")
	}
	if filter.DateTo != nil {
		to = filter.DateTo.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%t|%d|%d", from, to, filter.SortBy, filter.SortDesc, filter.Page, filter.PageSize)
}
