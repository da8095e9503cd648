package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	PostsCreated       *prometheus.CounterVec
	CommentsAdded      *prometheus.CounterVec
	FollowRequests     *prometheus.CounterVec
	UnfollowRequests   *prometheus.CounterVec
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PostsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_posts_created",
				Help: "Total number of posts created",
			},
			[]string{"handler"},
		),
		CommentsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_comments_added",
				Help: "Total number of comments added",
			},
			[]string{"handler"},
		),
		FollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_follows",
				Help: "Total number of successful follow requests",
			},
			[]string{"handler"},
		),
		UnfollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_unfollows",
				Help: "Total number of successful unfollow requests",
			},
			[]string{"handler"},
		),
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_successful_requests",
				Help: "Total number of successful (2xx/3xx) HTTP requests",
			},
			[]string{"handler"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_bad_requests",
				Help: "Total number of failed (4xx) HTTP requests",
			},
			[]string{"handler"},
		),
	}

	reg.MustRegister(
		m.PostsCreated,
		m.CommentsAdded,
		m.FollowRequests,
		m.UnfollowRequests,
		m.SuccessfulRequests,
		m.BadRequests,
	)
	return m
}
