package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_book_requests_total",
			Help: "Total number of book generation requests by status.",
		},
		[]string{"status"},
	)

	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storybook_orders_created_total",
		Help: "Total number of successfully created orders.",
	})
)
