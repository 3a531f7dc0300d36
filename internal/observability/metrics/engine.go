// Package metrics holds the shared metric names and tag vocabulary for the
// orchestration engine.
package metrics

// Result tag values for processing-pass metrics.
const (
	// ResultSuccess tags a pass that advanced at least one record.
	ResultSuccess = "success"
	// ResultNoop tags a pass that found no due work.
	ResultNoop = "noop"
	// ResultError tags a pass that failed outright.
	ResultError = "error"
)

// Metric names emitted by the engine runner.
const (
	// MetricProcessPass counts processing passes per platform.
	MetricProcessPass = "engine.process_pass"
	// MetricRecordsClaimed counts records claimed for processing.
	MetricRecordsClaimed = "engine.records_claimed"
	// MetricPassDuration times one processing pass.
	MetricPassDuration = "engine.pass_duration"
	// MetricSessionCheckFailed counts failed portal session probes.
	MetricSessionCheckFailed = "engine.session_check_failed"
	// MetricRecordsRecovered counts records rescued from a stranded
	// mid-submission state into the review queue.
	MetricRecordsRecovered = "engine.records_recovered"
)

// CloneTags returns a shallow copy so shared tag maps stay immutable.
func CloneTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	cp := make(map[string]string, len(tags))
	for k, v := range tags {
		cp[k] = v
	}
	return cp
}
