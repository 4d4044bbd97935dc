// Package metrics defines the Prometheus instruments for the tombstone
// subsystem. They live in a standalone package so both the service layer and
// the HTTP layer can increment them without import cycles.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TombstonesRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kinkeeper_tombstones_recorded_total",
		Help: "New tombstone rows created by record operations",
	})

	TombstoneDuplicates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kinkeeper_tombstone_duplicates_total",
		Help: "Record operations that found an existing tombstone (idempotent no-ops)",
	})

	ImportSuppressions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kinkeeper_import_suppressions_total",
		Help: "Existence checks that answered true, suppressing a re-import",
	})

	Undeletes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kinkeeper_tombstone_undeletes_total",
		Help: "Tombstones removed by explicit user restores",
	})
)

// Register registers the tombstone metrics on the given registry (or the
// default one if nil). Double registration is tolerated.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		TombstonesRecorded, TombstoneDuplicates, ImportSuppressions, Undeletes,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
