package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
)

type Repository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB

	CreateVideo(ctx context.Context, video *entities.Video) error
	FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	FindVideoByObject(ctx context.Context, object string) (*entities.Video, error)
	ListVideos(ctx context.Context, filter dto.VideoFilter) ([]*entities.Video, int64, error)
	RecentVideos(ctx context.Context, limit int) ([]*entities.Video, error)
	CountVideos(ctx context.Context) (int64, error)
	UpdateVideoStatus(ctx context.Context, id uuid.UUID, status constant.VideoStatus, progress int) error
	UpdateVideoResults(ctx context.Context, id uuid.UUID, totalVehicles int, complianceRate float64, processedObject string) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	ListVideoObjects(ctx context.Context) ([]string, error)

	UpsertJob(ctx context.Context, job *entities.Job) error
	FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	ListJobs(ctx context.Context, onlyActive bool) ([]*entities.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status constant.JobStatus, progress int, message string, elapsed float64) error

	InsertTrackingResults(ctx context.Context, results []*entities.TrackingResult) error
	TrackingByVideo(ctx context.Context, videoId uuid.UUID) ([]*entities.TrackingResult, error)
	AllTracking(ctx context.Context) ([]*entities.TrackingResult, error)
	FilterTracking(ctx context.Context, vehicleType, weather string, dateFrom, dateTo *time.Time) ([]*entities.TrackingResult, error)

	InsertVehicleCounts(ctx context.Context, counts []*entities.VehicleCount) error
	VehicleCountsByVideo(ctx context.Context, videoId uuid.UUID) ([]*entities.VehicleCount, error)

	CreateUser(ctx context.Context, user *entities.User) error
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindUserByResetToken(ctx context.Context, token string) (*entities.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) Repository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return r.GetDB().Create(video).Error
}

func (r *repo) FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.GetDB().First(video, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return video, nil
}

func (r *repo) FindVideoByObject(ctx context.Context, object string) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.GetDB().First(video, "original_object = ?", object).Error
	if err != nil {
		return nil, err
	}

	return video, nil
}

func (r *repo) ListVideos(ctx context.Context, filter dto.VideoFilter) ([]*entities.Video, int64, error) {
	query := r.GetDB().Model(&entities.Video{})
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "name", "created_at", "compliance_rate", "total_vehicles", "size_bytes":
	default:
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var videos []*entities.Video
	err := query.
		Order(sortBy + " " + direction).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

func (r *repo) RecentVideos(ctx context.Context, limit int) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.GetDB().Order("updated_at DESC").Limit(limit).Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) CountVideos(ctx context.Context) (int64, error) {
	var count int64
	err := r.GetDB().Model(&entities.Video{}).Count(&count).Error
	return count, err
}

func (r *repo) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status constant.VideoStatus, progress int) error {
	video := &entities.Video{}
	updates := map[string]interface{}{
		"status":   status,
		"progress": progress,
	}
	return r.GetDB().Model(video).Where("id = ?", id).Updates(updates).Error
}

func (r *repo) UpdateVideoResults(ctx context.Context, id uuid.UUID, totalVehicles int, complianceRate float64, processedObject string) error {
	video := &entities.Video{}
	updates := map[string]interface{}{
		"total_vehicles":  totalVehicles,
		"compliance_rate": complianceRate,
	}
	if processedObject != "" {
		updates["processed_object"] = processedObject
	}
	return r.GetDB().Model(video).Where("id = ?", id).Updates(updates).Error
}

func (r *repo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	return r.GetDB().Delete(&entities.Video{}, "id = ?", id).Error
}

func (r *repo) ListVideoObjects(ctx context.Context) ([]string, error) {
	var videos []*entities.Video
	err := r.GetDB().Select("original_object", "processed_object").Find(&videos).Error
	if err != nil {
		return nil, err
	}

	objects := make([]string, 0, len(videos)*2)
	for _, v := range videos {
		objects = append(objects, v.OriginalObject)
		if v.ProcessedObject != nil {
			objects = append(objects, *v.ProcessedObject)
		}
	}
	return objects, nil
}

func (r *repo) UpsertJob(ctx context.Context, job *entities.Job) error {
	return r.GetDB().Save(job).Error
}

func (r *repo) FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	job := &entities.Job{}
	err := r.GetDB().First(job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return job, nil
}

func (r *repo) ListJobs(ctx context.Context, onlyActive bool) ([]*entities.Job, error) {
	query := r.GetDB().Order("created_at DESC")
	if onlyActive {
		query = query.Where("status IN ?", []constant.JobStatus{constant.JobStatusQueued, constant.JobStatusProcessing})
	}

	var jobs []*entities.Job
	err := query.Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) UpdateJobStatus(ctx context.Context, id uuid.UUID, status constant.JobStatus, progress int, message string, elapsed float64) error {
	job := &entities.Job{}
	updates := map[string]interface{}{
		"status":          status,
		"progress":        progress,
		"message":         message,
		"elapsed_seconds": elapsed,
	}
	return r.GetDB().Model(job).Where("id = ?", id).Updates(updates).Error
}

func (r *repo) InsertTrackingResults(ctx context.Context, results []*entities.TrackingResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.GetDB().Create(results).Error
}

func (r *repo) TrackingByVideo(ctx context.Context, videoId uuid.UUID) ([]*entities.TrackingResult, error) {
	var results []*entities.TrackingResult
	err := r.GetDB().Where("video_id = ?", videoId).Order("tracker_id ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repo) AllTracking(ctx context.Context) ([]*entities.TrackingResult, error) {
	var results []*entities.TrackingResult
	err := r.GetDB().Order("date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repo) FilterTracking(ctx context.Context, vehicleType, weather string, dateFrom, dateTo *time.Time) ([]*entities.TrackingResult, error) {
	query := r.GetDB().Model(&entities.TrackingResult{})
	if vehicleType != "" {
		query = query.Where("vehicle_type = ?", vehicleType)
	}
	if weather != "" {
		query = query.Where("weather_condition = ?", weather)
	}
	if dateFrom != nil {
		query = query.Where("date >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("date <= ?", *dateTo)
	}

	var results []*entities.TrackingResult
	err := query.Order("date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repo) InsertVehicleCounts(ctx context.Context, counts []*entities.VehicleCount) error {
	if len(counts) == 0 {
		return nil
	}
	return r.GetDB().Create(counts).Error
}

func (r *repo) VehicleCountsByVideo(ctx context.Context, videoId uuid.UUID) ([]*entities.VehicleCount, error) {
	var counts []*entities.VehicleCount
	err := r.GetDB().Where("video_id = ?", videoId).Find(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repo) CreateUser(ctx context.Context, user *entities.User) error {
	return r.GetDB().Create(user).Error
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user := &entities.User{}
	err := r.GetDB().First(user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repo) FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user := &entities.User{}
	err := r.GetDB().First(user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repo) FindUserByResetToken(ctx context.Context, token string) (*entities.User, error) {
	user := &entities.User{}
	err := r.GetDB().First(user, "reset_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repo) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.GetDB().Model(&entities.User{}).Where("id = ?", id).Updates(updates).Error
}
