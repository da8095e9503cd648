package handlers

import (
	"fmt"
	"net/http"

	"yatube/auth"
	"yatube/forms"
	"yatube/models"
)

// AddComment attaches a comment to a post, forcing both the author and
// the post reference server-side. The handler always redirects back to
// the detail view; an invalid submission is dropped without an error
// surface.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.resolvePost(w, r)
	if !ok {
		return
	}

	form := forms.BindCommentForm(r)
	if form.Validate() {
		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: auth.UserFrom(r.Context()).ID,
			Text:     form.Text,
		}
		if err := h.comments.Create(&comment); err != nil {
			h.serverError(w, r, err)
			return
		}
		h.metrics.CommentsAdded.WithLabelValues("add_comment").Inc()
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}
