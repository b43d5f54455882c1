package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations applied, by operation",
	},
	[]string{"op"},
)
