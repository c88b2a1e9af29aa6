package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// VecTimer times functions, like prometheus.Timer, but observes
// into a prometheus.ObserverVec with labels chosen when the
// timer stops. Use NewVecTimer to create new instances.
//
//   func TimeMe() (err error) {
//       timer := NewVecTimer(myHistogramVec)
//       defer func() { timer.ObserveErr(err) }()
//       // Do actual work.
//   }
type VecTimer struct {
	begin time.Time
	vec   prometheus.ObserverVec
}

// NewVecTimer starts a new VecTimer. The ObserverVec is observed
// in seconds.
func NewVecTimer(v prometheus.ObserverVec) *VecTimer {
	return &VecTimer{
		begin: time.Now(),
		vec:   v,
	}
}

// ObserveWith observes the time since the VecTimer started with the given labels,
// and returns it.
func (t *VecTimer) ObserveWith(labels prometheus.Labels) time.Duration {
	d := time.Since(t.begin)
	if t.vec != nil {
		t.vec.With(labels).Observe(d.Seconds())
	}
	return d
}

// ObserveErr is like ObserveWith, setting LabelStatus to "success"
// if err is nil, else "error". Other labels may be added.
func (t *VecTimer) ObserveErr(err error, labels ...prometheus.Labels) time.Duration {
	l := prometheus.Labels{LabelStatus: StatusSuccess}
	if err != nil {
		l[LabelStatus] = StatusError
	}
	for _, ls := range labels {
		for k, v := range ls {
			l[k] = v
		}
	}
	return t.ObserveWith(l)
}
