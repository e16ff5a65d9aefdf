// Package prom counts snapshot events with Prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/exists-forall/id-cache"
)

type Hooks struct {
	selfHeals     *prometheus.CounterVec
	setRejected   prometheus.Counter
	versionErrors *prometheus.CounterVec
	outages       prometheus.Counter
	localShared   prometheus.Counter
}

var _ idcache.Hooks = (*Hooks)(nil)

// New registers the counters with reg under namespace (e.g. "app") and subsystem "idcache".
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: namespace, Subsystem: "idcache", Name: name, Help: help}
	}
	h := &Hooks{
		selfHeals: prometheus.NewCounterVec(
			opts("self_heals_total", "Stored snapshots deleted on load, by reason."),
			[]string{"reason"}),
		setRejected: prometheus.NewCounter(
			opts("provider_set_rejected_total", "Snapshot writes rejected by the provider.")),
		versionErrors: prometheus.NewCounterVec(
			opts("version_errors_total", "Version store failures, by operation."),
			[]string{"op"}),
		outages: prometheus.NewCounter(
			opts("invalidate_outages_total", "Invalidations where both version bump and delete failed.")),
		localShared: prometheus.NewCounter(
			opts("local_versions_shared_total", "Stores pairing a shared provider with in-process versions.")),
	}
	for _, c := range []prometheus.Collector{h.selfHeals, h.setRejected, h.versionErrors, h.outages, h.localShared} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) SelfHeal(_, reason string)             { h.selfHeals.WithLabelValues(reason).Inc() }
func (h *Hooks) ProviderSetRejected(string)            { h.setRejected.Inc() }
func (h *Hooks) VersionReadError(int, error)           { h.versionErrors.WithLabelValues("read").Inc() }
func (h *Hooks) VersionBumpError(string, error)        { h.versionErrors.WithLabelValues("bump").Inc() }
func (h *Hooks) InvalidateOutage(string, error, error) { h.outages.Inc() }
func (h *Hooks) LocalVersionsShared()                  { h.localShared.Inc() }
