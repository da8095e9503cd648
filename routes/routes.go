package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"yatube/auth"
	"yatube/cache"
	"yatube/handlers"
	"yatube/middleware"
)

// IndexCacheKey prefixes the cached renderings of the home feed; the
// query string distinguishes the individual pages.
const IndexCacheKey = "views.index"

// Deps is everything the router composes in front of the handlers.
type Deps struct {
	Handlers  *handlers.Handlers
	Sessions  *auth.Sessions
	PageCache cache.PageCache
	IndexTTL  time.Duration
	Metrics   http.Handler
	MediaRoot string
}

// New wires the route table. CSRF protection is layered on top of the
// returned router by main, so tests can exercise the routes directly.
func New(d Deps) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(d.Sessions.CurrentUser)
	r.Use(middleware.RequestLogger)

	h := d.Handlers

	index := middleware.CachePage(d.PageCache, IndexCacheKey, d.IndexTTL, http.HandlerFunc(h.Index))
	r.Handle("/", index).Methods("GET")

	r.HandleFunc("/group/{slug}/", h.GroupPosts).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/", h.PostDetail).Methods("GET")
	r.HandleFunc("/profile/{username}/", h.Profile).Methods("GET")

	r.Handle("/create/", auth.RequireLogin(http.HandlerFunc(h.PostCreate))).Methods("GET", "POST")
	r.Handle("/posts/{id:[0-9]+}/edit/", auth.RequireLogin(http.HandlerFunc(h.PostEdit))).Methods("GET", "POST")
	r.Handle("/posts/{id:[0-9]+}/comment/", auth.RequireLogin(http.HandlerFunc(h.AddComment))).Methods("POST")

	r.Handle("/follow/", auth.RequireLogin(http.HandlerFunc(h.FollowIndex))).Methods("GET")
	r.Handle("/profile/{username}/follow/", auth.RequireLogin(http.HandlerFunc(h.ProfileFollow))).Methods("GET")
	r.Handle("/profile/{username}/unfollow/", auth.RequireLogin(http.HandlerFunc(h.ProfileUnfollow))).Methods("GET")

	r.HandleFunc("/auth/signup/", h.Signup).Methods("GET", "POST")
	r.HandleFunc("/auth/login/", h.Login).Methods("GET", "POST")
	r.HandleFunc("/auth/logout/", h.Logout).Methods("GET")

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods("GET")
	}

	media := http.FileServer(http.Dir(d.MediaRoot))
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", media)).Methods("GET")

	r.NotFoundHandler = d.Sessions.CurrentUser(http.HandlerFunc(h.NotFound))

	return r
}
