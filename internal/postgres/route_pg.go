package postgres

import (
	"racelink/internal/model"

	"gorm.io/gorm"
)

// RouteRepo persists completed tracking routes for playback
type RouteRepo struct {
	db *gorm.DB
}

func NewRouteRepo(db *gorm.DB) *RouteRepo {
	return &RouteRepo{db: db}
}

// Save stores a completed route record
func (r *RouteRepo) Save(rec *model.RouteRecord) error {
	return r.db.Save(rec).Error
}

// Recent returns the most recent route records, newest first
func (r *RouteRepo) Recent(limit int) ([]model.RouteRecord, error) {
	var recs []model.RouteRecord
	result := r.db.Order("started_at DESC").Limit(limit).Find(&recs)
	return recs, result.Error
}

// ByID loads one route record
func (r *RouteRepo) ByID(id string) (*model.RouteRecord, error) {
	var rec model.RouteRecord
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
