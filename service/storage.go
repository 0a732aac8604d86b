package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"synerx-dashboard/config"
	"synerx-dashboard/dto"
	"synerx-dashboard/repository"
)

const signedURLExpiry = 15 * time.Minute

// StorageService exposes the video bucket to the dashboard: usage info,
// object listing, deletion, orphan cleanup and presigned playback/download
// URLs.
type StorageService interface {
	Info(ctx context.Context) (dto.StorageInfo, error)
	ListVideos(ctx context.Context) ([]dto.StorageObject, error)
	DeleteVideos(ctx context.Context, names []string) error
	Cleanup(ctx context.Context) (int, error)
	SignedURL(ctx context.Context, name string) (string, error)
	DownloadURL(ctx context.Context, name string) (string, error)
}

type storageService struct {
	repo repository.Repository
	cfg  *config.Config
}

func NewStorageService(repo repository.Repository, cfg *config.Config) StorageService {
	return &storageService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *storageService) Info(ctx context.Context) (dto.StorageInfo, error) {
	info := dto.StorageInfo{Bucket: s.cfg.MinIOBucket}

	for object := range s.cfg.Storage.ListObjects(ctx, s.cfg.MinIOBucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return dto.StorageInfo{}, object.Err
		}
		info.ObjectCount++
		info.TotalBytes += object.Size
	}

	return info, nil
}

func (s *storageService) ListVideos(ctx context.Context) ([]dto.StorageObject, error) {
	objects := make([]dto.StorageObject, 0)

	opts := minio.ListObjectsOptions{Prefix: "uploads/", Recursive: true}
	for object := range s.cfg.Storage.ListObjects(ctx, s.cfg.MinIOBucket, opts) {
		if object.Err != nil {
			return nil, object.Err
		}
		objects = append(objects, dto.StorageObject{
			Name:         object.Key,
			SizeBytes:    object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}

// DeleteVideos removes the named objects and the video rows that reference
// them. Processed renditions and orphans have no row; those are skipped.
func (s *storageService) DeleteVideos(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := s.cfg.Storage.RemoveObject(ctx, s.cfg.MinIOBucket, name, minio.RemoveObjectOptions{}); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("object", name).Msg("failed to delete object")
			return err
		}

		video, err := s.repo.FindVideoByObject(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if err := s.repo.DeleteVideo(ctx, video.ID); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup removes bucket objects that no video row references.
func (s *storageService) Cleanup(ctx context.Context) (int, error) {
	referenced, err := s.repo.ListVideoObjects(ctx)
	if err != nil {
		return 0, err
	}

	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	removed := 0
	opts := minio.ListObjectsOptions{Prefix: "uploads/", Recursive: true}
	for object := range s.cfg.Storage.ListObjects(ctx, s.cfg.MinIOBucket, opts) {
		if object.Err != nil {
			return removed, object.Err
		}
		if _, ok := keep[object.Key]; ok {
			continue
		}

		if err := s.cfg.Storage.RemoveObject(ctx, s.cfg.MinIOBucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("object", object.Key).Msg("failed to remove orphan object")
			return removed, err
		}
		removed++
	}

	zerolog.Ctx(ctx).Info().Int("removed", removed).Msg("storage cleanup finished")
	return removed, nil
}

func (s *storageService) SignedURL(ctx context.Context, name string) (string, error) {
	signed, err := s.cfg.Storage.PresignedGetObject(ctx, s.cfg.MinIOBucket, name, signedURLExpiry, nil)
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

func (s *storageService) DownloadURL(ctx context.Context, name string) (string, error) {
	base := name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		base = name[idx+1:]
	}

	reqParams := url.Values{}
	reqParams.Set("response-content-disposition", `attachment; filename="`+base+`"`)

	signed, err := s.cfg.Storage.PresignedGetObject(ctx, s.cfg.MinIOBucket, name, signedURLExpiry, reqParams)
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}
