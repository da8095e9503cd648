package repositories

import (
	"errors"

	"gorm.io/gorm"

	"yatube/models"
)

// GroupRepository resolves groups. Groups are created out-of-band, so
// only lookups live here.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) BySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.Where("slug = ?", slug).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) ByID(id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) All() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Order("title").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}
