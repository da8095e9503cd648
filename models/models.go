package models

import (
	"time"

	"yatube/utils"
)

// Display truncation limits used by the String methods.
const (
	MaxTextLength  = 15
	MaxTitleLength = 10
)

// User is the platform identity. Account lifecycle (signup, login)
// lives in the auth package; the feed core only references users.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:150;not null"`
	Email     string    `gorm:"size:254;not null"`
	PWHash    string    `gorm:"not null"`
	CreatedAt time.Time
	Posts     []Post    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Comments  []Comment `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (u User) String() string { return u.Username }

// Group is an editorial category posts may belong to. Groups are
// created out-of-band and are read-only from the handlers.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:100;not null"`
	Description string `gorm:"type:text"`
}

func (g Group) String() string { return utils.Truncate(g.Title, MaxTitleLength) }

type Post struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	// Deleting a group detaches its posts rather than removing them.
	GroupID  *uint     `gorm:"index"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string    `gorm:"size:255"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (p Post) String() string { return utils.Truncate(p.Text, MaxTextLength) }

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;index"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (c Comment) String() string { return utils.Truncate(c.Text, MaxTextLength) }

// Follow is a directed subscription edge: UserID follows AuthorID.
// The composite unique index makes duplicate follows impossible at the
// store level.
type Follow struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;index;uniqueIndex:idx_user_author"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID uint `gorm:"not null;index;uniqueIndex:idx_user_author"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// All returns the full set of entities for migration.
func All() []interface{} {
	return []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}}
}
