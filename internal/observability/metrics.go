// Package observability holds Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homestead_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AccountsRegistered counts account registrations by role.
	AccountsRegistered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homestead_accounts_registered_total",
		Help: "Total number of registered accounts by role",
	}, []string{"role"})

	// ListingsCreated counts created listings by category.
	ListingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homestead_listings_created_total",
		Help: "Total number of created listings by category",
	}, []string{"category"})

	// SlugRetries counts extra insert attempts spent on slug collisions.
	SlugRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homestead_slug_collision_retries_total",
		Help: "Total number of listing insert retries caused by slug collisions",
	})

	// PhotoCleanupFailures counts blob deletions that failed during listing removal.
	PhotoCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homestead_photo_cleanup_failures_total",
		Help: "Total number of photo blob deletions that failed during listing removal",
	})

	// SearchQueries counts search requests by outcome (hit, miss, invalid).
	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homestead_search_queries_total",
		Help: "Total number of listing search queries by outcome",
	}, []string{"outcome"})

	// WelcomeMailFailures counts welcome emails that could not be sent.
	WelcomeMailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homestead_welcome_mail_failures_total",
		Help: "Total number of welcome emails that failed to send",
	})
)
