package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu      *sync.Mutex
	elapsed time.Duration
	err     error
}

func (mt *DefaultMetric) SetDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.elapsed = elapsed
}

func (mt *DefaultMetric) Duration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return Round(mt.elapsed)
}

func (mt *DefaultMetric) SetErr(err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.err = err
}

func (mt *DefaultMetric) Err() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.err
}

// Round trims a duration to a readable precision.
func Round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
