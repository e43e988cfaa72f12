package operations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var conflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "huwaari",
	Subsystem: "timetable",
	Name:      "schedule_conflicts_total",
	Help:      "Schedule saves and checks rejected by the conflict checker, by conflict kind.",
}, []string{"kind"})
