package activation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var codesMinted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "acctmgr_activation_codes_minted_total",
		Help: "Number of activation codes generated, by type.",
	},
	[]string{"type"},
)

var codeTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "acctmgr_activation_code_transitions_total",
		Help: "Number of activation code status changes, by source and target status.",
	},
	[]string{"from", "to"},
)
