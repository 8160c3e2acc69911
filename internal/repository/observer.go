package repository

import "time"

// QueryObserver receives query timings, typically the metrics service.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

func observe(o QueryObserver, label string, start time.Time) {
	if o == nil {
		return
	}
	o.ObserveDBQuery(label, time.Since(start))
}
