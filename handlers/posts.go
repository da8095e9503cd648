package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"yatube/auth"
	"yatube/forms"
	"yatube/models"
	"yatube/repositories"
	"yatube/utils"
)

// Index lists every post, newest first. The response is cached whole by
// the page-cache middleware in front of this handler.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Feed()
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.SuccessfulRequests.WithLabelValues("index").Inc()
	h.render(w, r, http.StatusOK, "index", map[string]interface{}{
		"Page": utils.Paginate(posts, pageParam(r), h.perPage),
	})
}

// GroupPosts lists the posts of one group, resolved by slug.
func (h *Handlers) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.BySlug(mux.Vars(r)["slug"])
	if errors.Is(err, repositories.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	posts, err := h.posts.ByGroup(group.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.SuccessfulRequests.WithLabelValues("group_posts").Inc()
	h.render(w, r, http.StatusOK, "group_list", map[string]interface{}{
		"Group": group,
		"Page":  utils.Paginate(posts, pageParam(r), h.perPage),
	})
}

// Profile lists one author's posts plus whether the viewer follows them.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	author, err := h.users.ByUsername(mux.Vars(r)["username"])
	if errors.Is(err, repositories.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	posts, err := h.posts.ByAuthor(author.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	following := false
	if viewer := auth.UserFrom(r.Context()); viewer != nil {
		following, err = h.follows.IsFollowing(viewer.ID, author.ID)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
	}

	h.metrics.SuccessfulRequests.WithLabelValues("profile").Inc()
	h.render(w, r, http.StatusOK, "profile", map[string]interface{}{
		"Author":    author,
		"Page":      utils.Paginate(posts, pageParam(r), h.perPage),
		"Following": following,
	})
}

// PostDetail shows one post, its comments newest first and an empty
// comment form.
func (h *Handlers) PostDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := h.resolvePost(w, r)
	if !ok {
		return
	}

	h.metrics.SuccessfulRequests.WithLabelValues("post_detail").Inc()
	h.render(w, r, http.StatusOK, "post_detail", map[string]interface{}{
		"Post":     post,
		"Comments": post.Comments,
		"Form":     &forms.CommentForm{},
	})
}

// PostCreate shows the post form and handles its submission. The author
// is always the session user, never client input.
func (h *Handlers) PostCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	if r.Method == http.MethodGet {
		h.renderPostForm(w, r, http.StatusOK, &forms.PostForm{}, nil)
		return
	}

	form := forms.BindPostForm(r, h.mediaRoot)
	if !h.checkGroup(w, r, form) {
		return
	}
	if !form.Validate() {
		h.metrics.BadRequests.WithLabelValues("post_create").Inc()
		h.renderPostForm(w, r, http.StatusOK, form, nil)
		return
	}

	post := models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  form.GroupID,
		Image:    form.Image,
	}
	if err := h.posts.Create(&post); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.PostsCreated.WithLabelValues("post_create").Inc()
	http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusFound)
}

// PostEdit lets the author, and only the author, change a post. Anyone
// else lands on the read-only detail view before the form is touched.
func (h *Handlers) PostEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := h.resolvePost(w, r)
	if !ok {
		return
	}

	user := auth.UserFrom(r.Context())
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)
	if post.AuthorID != user.ID {
		http.Redirect(w, r, detailURL, http.StatusFound)
		return
	}

	if r.Method == http.MethodGet {
		form := &forms.PostForm{Text: post.Text, GroupID: post.GroupID, Image: post.Image}
		h.renderPostForm(w, r, http.StatusOK, form, post)
		return
	}

	form := forms.BindPostForm(r, h.mediaRoot)
	if !h.checkGroup(w, r, form) {
		return
	}
	if !form.Validate() {
		h.metrics.BadRequests.WithLabelValues("post_edit").Inc()
		h.renderPostForm(w, r, http.StatusOK, form, post)
		return
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	if form.Image != "" {
		post.Image = form.Image
	}
	post.AuthorID = user.ID
	if err := h.posts.Update(post); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.SuccessfulRequests.WithLabelValues("post_edit").Inc()
	http.Redirect(w, r, detailURL, http.StatusFound)
}

func (h *Handlers) renderPostForm(w http.ResponseWriter, r *http.Request, status int, form *forms.PostForm, post *models.Post) {
	groups, err := h.groups.All()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	ctx := map[string]interface{}{
		"Form":   form,
		"Groups": groups,
		"IsEdit": post != nil,
	}
	if post != nil {
		ctx["Post"] = post
	}
	h.render(w, r, status, "create_post", ctx)
}

// checkGroup verifies a submitted group id resolves, turning a dangling
// reference into a field error.
func (h *Handlers) checkGroup(w http.ResponseWriter, r *http.Request, form *forms.PostForm) bool {
	if form.GroupID == nil {
		return true
	}
	if _, err := h.groups.ByID(*form.GroupID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			form.Errors["group"] = "Select a valid group."
			return true
		}
		h.serverError(w, r, err)
		return false
	}
	return true
}

// resolvePost fetches the {id} post or renders the 404 page.
func (h *Handlers) resolvePost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		h.NotFound(w, r)
		return nil, false
	}

	post, err := h.posts.ByID(uint(id))
	if errors.Is(err, repositories.ErrNotFound) {
		h.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}
	return post, true
}
