package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huwaari",
		Subsystem: "identity",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	usersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huwaari",
		Subsystem: "identity",
		Name:      "users_created_total",
		Help:      "Users created through the admin endpoint, by role.",
	}, []string{"role"})
)
