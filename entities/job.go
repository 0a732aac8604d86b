package entities

import (
	"time"

	"github.com/google/uuid"

	"synerx-dashboard/constant"
)

type Job struct {
	ID             uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VideoID        uuid.UUID          `json:"video_id" gorm:"type:uuid;not null;index:idx_jobs_video"`
	Status         constant.JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'queued';index:idx_jobs_status"`
	Progress       int                `json:"progress" gorm:"type:integer;not null;default:0;check:progress BETWEEN 0 AND 100"`
	Message        string             `json:"message" gorm:"type:text"`
	ElapsedSeconds float64            `json:"elapsed_seconds" gorm:"type:double precision;default:0"`
	CreatedAt      time.Time          `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time          `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Job) TableName() string {
	return "jobs"
}
