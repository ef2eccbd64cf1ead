package settings

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var settingWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "acctmgr_setting_writes_total",
		Help: "Number of setting overrides written or removed, by operation and scope kind.",
	},
	[]string{"op", "scope"},
)

var staleOverrides = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "acctmgr_setting_stale_overrides_total",
		Help: "Number of stored overrides skipped because their type no longer matches the catalog.",
	},
)
