package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"yatube/auth"
	"yatube/models"
	"yatube/repositories"
	"yatube/utils"
)

// FollowIndex is the personalized feed: posts by the authors the
// session user follows.
func (h *Handlers) FollowIndex(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	posts, err := h.posts.ByFollower(user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.SuccessfulRequests.WithLabelValues("follow_index").Inc()
	h.render(w, r, http.StatusOK, "follow", map[string]interface{}{
		"Page": utils.Paginate(posts, pageParam(r), h.perPage),
	})
}

// ProfileFollow subscribes the session user to an author. Duplicate
// calls and self-follow attempts fall through to the same redirect.
func (h *Handlers) ProfileFollow(w http.ResponseWriter, r *http.Request) {
	author, ok := h.resolveAuthor(w, r)
	if !ok {
		return
	}

	user := auth.UserFrom(r.Context())
	err := h.follows.Follow(user.ID, author.ID)
	if err != nil && !errors.Is(err, repositories.ErrSelfFollow) {
		h.serverError(w, r, err)
		return
	}
	if err == nil {
		h.metrics.FollowRequests.WithLabelValues("profile_follow").Inc()
	}

	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}

// ProfileUnfollow drops the subscription if it exists.
func (h *Handlers) ProfileUnfollow(w http.ResponseWriter, r *http.Request) {
	author, ok := h.resolveAuthor(w, r)
	if !ok {
		return
	}

	user := auth.UserFrom(r.Context())
	removed, err := h.follows.Unfollow(user.ID, author.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if removed {
		h.metrics.UnfollowRequests.WithLabelValues("profile_unfollow").Inc()
	}

	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}

func (h *Handlers) resolveAuthor(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := h.users.ByUsername(mux.Vars(r)["username"])
	if errors.Is(err, repositories.ErrNotFound) {
		h.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}
	return user, true
}
