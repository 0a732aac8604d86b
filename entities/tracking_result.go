package entities

import (
	"time"

	"github.com/google/uuid"

	"synerx-dashboard/constant"
)

type TrackingResult struct {
	TrackerID        int                    `json:"tracker_id" gorm:"primary_key;autoIncrement"`
	VideoID          uuid.UUID              `json:"video_id" gorm:"type:uuid;not null;index:idx_tracking_results_video"`
	VehicleType      string                 `json:"vehicle_type" gorm:"type:varchar(50);not null;index:idx_tracking_results_vehicle_type"`
	Status           constant.VehicleStatus `json:"status" gorm:"type:varchar(20);not null"`
	Compliance       int                    `json:"compliance" gorm:"type:integer;not null;check:compliance IN (0, 1)"`
	ReactionTime     *float64               `json:"reaction_time" gorm:"type:double precision"`
	WeatherCondition string                 `json:"weather_condition" gorm:"type:varchar(50);index:idx_tracking_results_weather"`
	Temperature      *float64               `json:"temperature" gorm:"type:double precision"`
	VisibleDistance  *float64               `json:"visible_distance" gorm:"type:double precision"`
	Date             time.Time              `json:"date" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (TrackingResult) TableName() string {
	return "tracking_results"
}

// Compliant reports whether the vehicle reacted within the compliance window.
func (t TrackingResult) Compliant() bool {
	return t.Compliance == 1
}
