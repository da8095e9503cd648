package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"yatube/models"
	"yatube/repositories"
)

// LoginURL is where anonymous users are sent when a guarded route is
// hit. The original destination rides along in the next parameter.
const LoginURL = "/auth/login/"

const sessionName = "yatube_session"

type contextKey int

const userKey contextKey = 0

// Sessions binds the cookie store to the user table and supplies the
// current-user middleware and the login guard.
type Sessions struct {
	store *sessions.CookieStore
	users *repositories.UserRepository
}

func NewSessions(secret string, users *repositories.UserRepository) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 16, // 16 hours
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, users: users}
}

// CurrentUser resolves the session's user, if any, and stores it in the
// request context. Anonymous requests pass through with no user set.
func (s *Sessions) CurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.store.Get(r, sessionName)
		if id, ok := session.Values["user_id"].(uint); ok {
			if user, err := s.users.ByID(id); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userKey, user))
			} else if err != repositories.ErrNotFound {
				logrus.WithError(err).Error("failed to load session user")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// UserFrom returns the authenticated user placed in the context by
// CurrentUser, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// RequireLogin redirects anonymous requests to the login page, keeping
// the original destination in next.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			dest := LoginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, dest, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login records the user in the session cookie.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	return session.Save(r, w)
}

// Logout drops the session.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
