package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var stockRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Add-to-cart requests refused, by reason (insufficient or unavailable)",
	},
	[]string{"reason"},
)
