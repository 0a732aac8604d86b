package dto

import (
	"time"

	"github.com/google/uuid"

	"synerx-dashboard/constant"
)

// JobMessage is published to the processing queue when an upload is accepted.
type JobMessage struct {
	JobId      uuid.UUID `json:"jobId"`
	VideoId    uuid.UUID `json:"videoId"`
	ObjectPath string    `json:"objectPath"`
	FileName   string    `json:"fileName"`
}

// JobProgressMessage is consumed from the progress queue as the inference
// backend works through a job.
type JobProgressMessage struct {
	JobId          uuid.UUID          `json:"jobId"`
	VideoId        uuid.UUID          `json:"videoId"`
	Status         constant.JobStatus `json:"status"`
	Progress       int                `json:"progress"`
	Message        string             `json:"message"`
	ElapsedSeconds float64            `json:"elapsedSeconds"`
}

// TrackingBatchMessage carries detected-vehicle events for a completed job.
type TrackingBatchMessage struct {
	VideoId uuid.UUID        `json:"videoId"`
	Results []TrackingRecord `json:"results"`
}

type TrackingRecord struct {
	TrackerId        int      `json:"trackerId"`
	VehicleType      string   `json:"vehicleType"`
	Status           string   `json:"status"`
	Compliance       int      `json:"compliance"`
	ReactionTime     *float64 `json:"reactionTime"`
	WeatherCondition string   `json:"weatherCondition"`
	Temperature      *float64 `json:"temperature"`
	VisibleDistance  *float64 `json:"visibleDistance"`
	Date             string   `json:"date"`
}

// JobSnapshot is one entry of the job list pushed to dashboard clients.
type JobSnapshot struct {
	JobId          uuid.UUID          `json:"job_id"`
	VideoId        uuid.UUID          `json:"video_id"`
	VideoName      string             `json:"video_name"`
	Status         constant.JobStatus `json:"status"`
	Progress       int                `json:"progress"`
	Message        string             `json:"message"`
	ElapsedSeconds float64            `json:"elapsed_time"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// JobListEnvelope is the wire format of the /ws/jobs feed. Each message
// replaces the client's job list wholesale.
type JobListEnvelope struct {
	Type string        `json:"type"`
	Jobs []JobSnapshot `json:"jobs"`
}

// FrameMessage is one base64 JPEG frame relayed on /ws/video-stream/{job_id}.
type FrameMessage struct {
	JobId     string `json:"job_id"`
	Seq       uint64 `json:"seq"`
	Timestamp int64  `json:"timestamp"`
	Frame     string `json:"frame"`
}

type VideoFilter struct {
	DateFrom *time.Time `json:"date_from" form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `json:"date_to" form:"date_to" time_format:"2006-01-02"`
	SortBy   string     `json:"sort_by" form:"sort_by"`
	SortDesc bool       `json:"sort_desc" form:"sort_desc"`
	Page     int        `json:"page" form:"page"`
	PageSize int        `json:"page_size" form:"page_size"`
}

type VideoPage struct {
	Videos     []VideoSummary `json:"videos"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
}

type VideoSummary struct {
	Id              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Status          constant.VideoStatus `json:"status"`
	Progress        int                  `json:"progress"`
	DurationSeconds *float64             `json:"duration_seconds"`
	SizeBytes       int64                `json:"size_bytes"`
	TotalVehicles   int                  `json:"total_vehicles"`
	ComplianceRate  float64              `json:"compliance_rate"`
	CreatedAt       time.Time            `json:"created_at"`
}

// VideoResults is the per-video detail payload: the video itself plus its
// persisted tracking rows and vehicle-type counts.
type VideoResults struct {
	Video   VideoSummary       `json:"video"`
	Results []TrackingRecord   `json:"results"`
	Counts  []VehicleTypeCount `json:"vehicle_counts"`
}

type VehicleTypeCount struct {
	VehicleType string `json:"vehicle_type"`
	Count       int    `json:"count"`
}

type AnalyticsSummary struct {
	TotalVehicles     int                       `json:"total_vehicles"`
	CompliantVehicles int                       `json:"compliant_vehicles"`
	ComplianceRate    float64                   `json:"overall_compliance"`
	AvgReactionTime   float64                   `json:"avg_reaction_time"`
	ByWeather         map[string]GroupBreakdown `json:"by_weather"`
	ByVehicleType     map[string]GroupBreakdown `json:"by_vehicle_type"`
	ByHour            map[int]GroupBreakdown    `json:"by_hour"`
	Recommendations   []Recommendation          `json:"recommendations"`
}

type GroupBreakdown struct {
	Count           int     `json:"count"`
	ComplianceRate  float64 `json:"compliance_rate"`
	AvgReactionTime float64 `json:"avg_reaction_time"`
}

type Recommendation struct {
	Category string  `json:"category"`
	Group    string  `json:"group"`
	Rate     float64 `json:"compliance_rate"`
	Text     string  `json:"text"`
}

type CorrelationReport struct {
	TemperatureReaction float64                   `json:"temperature_reaction_correlation"`
	SampleSize          int                       `json:"sample_size"`
	WeatherCompliance   map[string]GroupBreakdown `json:"weather_compliance"`
}

type SystemStatus struct {
	BackendReachable bool   `json:"backend_reachable"`
	ActiveJobs       int    `json:"active_jobs"`
	QueuedJobs       int    `json:"queued_jobs"`
	TotalVideos      int64  `json:"total_videos"`
	StorageUsedBytes int64  `json:"storage_used_bytes"`
	Message          string `json:"message,omitempty"`
}

type ActivityEntry struct {
	VideoId   uuid.UUID            `json:"video_id"`
	VideoName string               `json:"video_name"`
	Status    constant.VideoStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
}

type StorageInfo struct {
	Bucket      string `json:"bucket"`
	ObjectCount int    `json:"object_count"`
	TotalBytes  int64  `json:"total_bytes"`
}

type StorageObject struct {
	Name         string    `json:"name"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}
