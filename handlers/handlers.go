package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"yatube/auth"
	"yatube/metrics"
	"yatube/repositories"
)

// Handlers holds the repositories and collaborators every view needs.
type Handlers struct {
	posts    *repositories.PostRepository
	groups   *repositories.GroupRepository
	users    *repositories.UserRepository
	comments *repositories.CommentRepository
	follows  *repositories.FollowRepository

	sessions  *auth.Sessions
	metrics   *metrics.Metrics
	templates map[string]*template.Template

	perPage   int
	mediaRoot string
}

func New(db *gorm.DB, sessions *auth.Sessions, m *metrics.Metrics, perPage int, mediaRoot string) *Handlers {
	return &Handlers{
		posts:     repositories.NewPostRepository(db),
		groups:    repositories.NewGroupRepository(db),
		users:     repositories.NewUserRepository(db),
		comments:  repositories.NewCommentRepository(db),
		follows:   repositories.NewFollowRepository(db),
		sessions:  sessions,
		metrics:   m,
		templates: loadTemplates(),
		perPage:   perPage,
		mediaRoot: mediaRoot,
	}
}

// pageParam reads the requested page number, defaulting to the first
// page on anything unparsable.
func pageParam(r *http.Request) int {
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			return page
		}
	}
	return 1
}
