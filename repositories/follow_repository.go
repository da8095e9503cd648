package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/models"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow subscribes user to author. Calling it again for the same pair
// is a no-op, backed by the (user_id, author_id) unique index.
// Self-follow is refused here rather than left to the handlers.
func (r *FollowRepository) Follow(userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
}

// Unfollow removes the subscription if present and reports whether a
// row was actually deleted. A missing row is not an error.
func (r *FollowRepository) Unfollow(userID, authorID uint) (bool, error) {
	res := r.db.
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *FollowRepository) IsFollowing(userID, authorID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}

func (r *FollowRepository) CountFollowers(authorID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *FollowRepository) CountFollowing(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
