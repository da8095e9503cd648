package repositories

import (
	"errors"

	"gorm.io/gorm"

	"yatube/models"
)

// PostRepository exposes the typed post queries the listing views need.
// Every listing is newest-first and eager-loads Author and Group so the
// templates never trigger per-row lookups.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) listing() *gorm.DB {
	return r.db.Preload("Author").Preload("Group").Order("created_at DESC, id DESC")
}

// Feed returns every post, newest first.
func (r *PostRepository) Feed() ([]models.Post, error) {
	var posts []models.Post
	err := r.listing().Find(&posts).Error
	return posts, err
}

// ByGroup returns the posts attached to one group.
func (r *PostRepository) ByGroup(groupID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.listing().Where("group_id = ?", groupID).Find(&posts).Error
	return posts, err
}

// ByAuthor returns the posts written by one user.
func (r *PostRepository) ByAuthor(authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.listing().Where("author_id = ?", authorID).Find(&posts).Error
	return posts, err
}

// ByFollower returns the posts whose author the given user follows.
func (r *PostRepository) ByFollower(userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.listing().
		Where("author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)).
		Find(&posts).Error
	return posts, err
}

// ByID fetches one post with author, group and newest-first comments.
func (r *PostRepository) ByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Author").
		Preload("Group").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Comments.Author").
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// Update persists the mutable fields of an existing post. CreatedAt is
// never touched.
func (r *PostRepository) Update(post *models.Post) error {
	return r.db.Model(&models.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"text":      post.Text,
			"group_id":  post.GroupID,
			"image":     post.Image,
			"author_id": post.AuthorID,
		}).Error
}

func (r *PostRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Post{}).Count(&n).Error
	return n, err
}
