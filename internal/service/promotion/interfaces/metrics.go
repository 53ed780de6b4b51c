// internal/service/promotion/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var joinResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "promo_join_requests_total",
	Help: "Join requests by admission outcome.",
}, []string{"result"})
