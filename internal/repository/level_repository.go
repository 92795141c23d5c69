package repository

import (
	"vunderkids_backend/internal/model"

	"gorm.io/gorm"
)

type LevelRepository struct {
	DB *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{DB: db}
}

func (r *LevelRepository) WithTx(tx *gorm.DB) *LevelRepository {
	return &LevelRepository{DB: tx}
}

// FindAllAscending returns the level ladder ordered by cups required, which
// is the order the level computation walks it in.
func (r *LevelRepository) FindAllAscending() ([]model.LevelRequirement, error) {
	var requirements []model.LevelRequirement
	err := r.DB.Order("cups_required ASC").Find(&requirements).Error
	return requirements, err
}

func (r *LevelRepository) Create(req *model.LevelRequirement) error {
	return r.DB.Create(req).Error
}
