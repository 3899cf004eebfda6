package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "devicehub_gateway_requests_total",
	Help: "Requests issued to the inventory backend, by method and outcome.",
}, []string{"method", "outcome"})
