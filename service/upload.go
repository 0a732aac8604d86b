package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"synerx-dashboard/config"
	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
	"synerx-dashboard/pkg/rabbitmq"
	"synerx-dashboard/repository"
)

var ErrUnsupportedMediaType = errors.New("unsupported video mime type")

var allowedVideoMIMEs = map[string]struct{}{
	"video/mp4":       {},
	"video/avi":       {},
	"video/quicktime": {},
	"video/x-msvideo": {},
	"video/webm":      {},
}

type UploadService interface {
	Upload(ctx context.Context, r io.Reader, name, contentType string, userId *uuid.UUID) (*entities.Video, error)
}

type uploadService struct {
	repo      repository.Repository
	cfg       *config.Config
	publisher rabbitmq.Publisher
	feed      JobFeed
}

func NewUploadService(repo repository.Repository, cfg *config.Config, publisher rabbitmq.Publisher, feed JobFeed) UploadService {
	return &uploadService{
		repo:      repo,
		cfg:       cfg,
		publisher: publisher,
		feed:      feed,
	}
}

// Upload validates the file type, stages the bytes to a temp file for the
// duration probe, pushes the object to storage, records the video and its
// queued job, and publishes the processing request. Validation runs before
// any storage or broker work.
func (s *uploadService) Upload(ctx context.Context, r io.Reader, name, contentType string, userId *uuid.UUID) (*entities.Video, error) {
	if _, ok := allowedVideoMIMEs[strings.ToLower(contentType)]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}

	videoId := uuid.New()

	tempDir := filepath.Join("temp", videoId.String())
	defer os.RemoveAll(tempDir)
	if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
		return nil, err
	}

	localPath := filepath.Join(tempDir, filepath.Base(name))
	f, err := os.Create(localPath)
	if err != nil {
		return nil, err
	}
	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}

	duration, probeErr := ProbeDuration(ctx, localPath)
	if probeErr != nil {
		zerolog.Ctx(ctx).Warn().Err(probeErr).Str("video", name).Msg("duration probe failed")
	}

	objectPath := strings.ReplaceAll(filepath.Join("uploads", videoId.String(), filepath.Base(name)), "\\", "/")
	_, err = s.cfg.Storage.FPutObject(ctx, s.cfg.MinIOBucket, objectPath, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("object", objectPath).Msg("failed to upload object")
		return nil, err
	}

	video := &entities.Video{
		ID:             videoId,
		Name:           name,
		OriginalObject: objectPath,
		Status:         constant.VideoStatusUploaded,
		SizeBytes:      size,
		UploadedBy:     userId,
	}
	if probeErr == nil {
		video.DurationSeconds = &duration
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}

	job := &entities.Job{
		ID:      uuid.New(),
		VideoID: videoId,
		Status:  constant.JobStatusQueued,
		Message: "queued for processing",
	}
	if err := s.repo.UpsertJob(ctx, job); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishJob(ctx, dto.JobMessage{
		JobId:      job.ID,
		VideoId:    videoId,
		ObjectPath: objectPath,
		FileName:   filepath.Base(name),
	}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to publish job")
		return nil, err
	}

	s.feed.Track(ctx, dto.JobSnapshot{
		JobId:     job.ID,
		VideoId:   videoId,
		VideoName: name,
		Status:    constant.JobStatusQueued,
		Message:   job.Message,
		UpdatedAt: time.Now(),
	})

	zerolog.Ctx(ctx).Info().
		Str("video_id", videoId.String()).
		Str("job_id", job.ID.String()).
		Int64("size_bytes", size).
		Msg("upload accepted")

	return video, nil
}

// AllowedMIME reports whether the content type passes the upload allow-list.
func AllowedMIME(contentType string) bool {
	_, ok := allowedVideoMIMEs[strings.ToLower(contentType)]
	return ok
}
