package entities

import (
	"time"

	"github.com/google/uuid"
)

type VehicleCount struct {
	ID          int       `json:"id" gorm:"primary_key;autoIncrement"`
	VideoID     uuid.UUID `json:"video_id" gorm:"type:uuid;not null;index:idx_vehicle_counts_video"`
	VehicleType string    `json:"vehicle_type" gorm:"type:varchar(50);not null"`
	Count       int       `json:"count" gorm:"type:integer;not null"`
	Date        time.Time `json:"date" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (VehicleCount) TableName() string {
	return "vehicle_counts"
}
