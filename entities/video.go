package entities

import (
	"time"

	"github.com/google/uuid"

	"synerx-dashboard/constant"
)

type Video struct {
	ID              uuid.UUID            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name            string               `json:"name" gorm:"type:varchar(255);not null"`
	OriginalObject  string               `json:"original_object" gorm:"type:varchar(500);not null"`
	ProcessedObject *string              `json:"processed_object" gorm:"type:varchar(500)"`
	Status          constant.VideoStatus `json:"status" gorm:"type:varchar(20);not null;default:'uploaded';index:idx_videos_status"`
	Progress        int                  `json:"progress" gorm:"type:integer;default:0"`
	DurationSeconds *float64             `json:"duration_seconds" gorm:"type:double precision"`
	SizeBytes       int64                `json:"size_bytes" gorm:"type:bigint"`
	TotalVehicles   int                  `json:"total_vehicles" gorm:"type:integer;default:0"`
	ComplianceRate  float64              `json:"compliance_rate" gorm:"type:double precision;default:0"`
	UploadedBy      *uuid.UUID           `json:"uploaded_by" gorm:"type:uuid;index:idx_videos_uploaded_by"`
	CreatedAt       time.Time            `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time            `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Video) TableName() string {
	return "videos"
}
