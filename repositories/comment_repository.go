package repositories

import (
	"gorm.io/gorm"

	"yatube/models"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ByPost returns a post's comments, newest first.
func (r *CommentRepository) ByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) CountByPost(postID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}
