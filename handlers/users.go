package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"yatube/auth"
	"yatube/models"
	"yatube/repositories"
)

// Signup registers a new account and sends the user to the login page.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "signup", map[string]interface{}{
			"Username": "",
			"Email":    "",
		})
		return
	}

	r.ParseForm()
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	password2 := r.FormValue("password2")

	var errMsg string
	switch {
	case username == "":
		errMsg = "You have to enter a username"
	case email == "" || !strings.Contains(email, "@"):
		errMsg = "You have to enter a valid email address"
	case password == "":
		errMsg = "You have to enter a password"
	case password != password2:
		errMsg = "The two passwords do not match"
	default:
		if _, err := h.users.ByUsername(username); err == nil {
			errMsg = "The username is already taken"
		} else if !errors.Is(err, repositories.ErrNotFound) {
			h.serverError(w, r, err)
			return
		}
	}

	if errMsg != "" {
		h.metrics.BadRequests.WithLabelValues("signup").Inc()
		h.render(w, r, http.StatusOK, "signup", map[string]interface{}{
			"Error":    errMsg,
			"Username": username,
			"Email":    email,
		})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	user := models.User{Username: username, Email: email, PWHash: hash}
	if err := h.users.Create(&user); err != nil {
		h.serverError(w, r, err)
		return
	}

	logrus.WithField("username", username).Info("user registered")
	h.metrics.SuccessfulRequests.WithLabelValues("signup").Inc()
	http.Redirect(w, r, auth.LoginURL, http.StatusFound)
}

// Login authenticates and opens a session, then honors the next
// parameter carried over from a guarded route.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "login", map[string]interface{}{
			"Username": "",
			"Next":     r.URL.Query().Get("next"),
		})
		return
	}

	r.ParseForm()
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	user, err := h.users.ByUsername(username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.PWHash, password) {
		logrus.WithField("username", username).Warn("invalid login attempt")
		h.metrics.BadRequests.WithLabelValues("login").Inc()
		h.render(w, r, http.StatusOK, "login", map[string]interface{}{
			"Error":    "Invalid username or password",
			"Username": username,
			"Next":     next,
		})
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.SuccessfulRequests.WithLabelValues("login").Inc()
	// Only follow same-site destinations.
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout drops the session and returns to the feed.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
