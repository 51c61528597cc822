package measure

import "time"

// Measure collects one metric per stage.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric records how a single stage ran.
type Metric interface {
	SetDuration(elapsed time.Duration)
	Duration() time.Duration
	SetErr(err error)
	Err() error
}
