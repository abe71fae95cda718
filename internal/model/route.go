package model

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
)

// RouteRecord is a completed tracking session persisted for playback.
// Geometry is stored as GeoJSON text so the record stays portable.
type RouteRecord struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	DistanceMeters float64 `json:"distance_meters" gorm:"not null"`
	AvgSpeedMPS    float64 `json:"avg_speed_mps"`
	PointCount     int     `json:"point_count"`
	Geometry       string  `json:"-" gorm:"type:text"`

	StartedAt time.Time      `json:"started_at" gorm:"column:started_at"`
	EndedAt   time.Time      `json:"ended_at" gorm:"column:ended_at"`
	CreatedAt time.Time      `json:"-" gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

// SetLine encodes the route polyline into the Geometry column
func (r *RouteRecord) SetLine(line orb.LineString) error {
	data, err := geojson.NewGeometry(line).MarshalJSON()
	if err != nil {
		return err
	}
	r.Geometry = string(data)
	r.PointCount = len(line)
	return nil
}

// Line decodes the stored Geometry back into a polyline
func (r *RouteRecord) Line() (orb.LineString, error) {
	g, err := geojson.UnmarshalGeometry([]byte(r.Geometry))
	if err != nil {
		return nil, err
	}
	line, ok := g.Geometry().(orb.LineString)
	if !ok {
		return orb.LineString{}, nil
	}
	return line, nil
}
