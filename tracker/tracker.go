// Package tracker implements in-memory tracking of calls made to hosts.
//
// Tracker serves as concurrency source for bounded load rings and as
// reported load source for power of two selection.
package tracker

import (
	"sort"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Tracker tracks in-flight calls and loads reported by hosts.
// It is safe for concurrent use.
type Tracker struct {
	hosts *xsync.Map[string, *stats]
}

type stats struct {
	inFlight atomic.Int64
	calls    atomic.Int64
	// reported holds last reported load or -1 if there was none.
	reported atomic.Int64
}

func newStats() *stats {
	s := new(stats)
	s.reported.Store(-1)
	return s
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		hosts: xsync.NewMap[string, *stats](),
	}
}

// StartCall registers a call to the host. Returned function must be called
// when the call is finished; subsequent calls to it are no-op.
func (t *Tracker) StartCall(host string) (done func()) {
	s := t.stats(host)
	s.inFlight.Add(1)
	s.calls.Add(1)

	var finished atomic.Bool
	return func() {
		if finished.CompareAndSwap(false, true) {
			s.inFlight.Add(-1)
		}
	}
}

// Concurrency returns number of in-flight calls to the host.
func (t *Tracker) Concurrency(host string) int {
	s, ok := t.hosts.Load(host)
	if !ok {
		return 0
	}
	return int(s.inFlight.Load())
}

// CallCount returns total number of calls started to the host.
func (t *Tracker) CallCount(host string) int64 {
	s, ok := t.hosts.Load(host)
	if !ok {
		return 0
	}
	return s.calls.Load()
}

// SetReportedLoad stores load reported by the host. Negative load resets it
// to unknown.
func (t *Tracker) SetReportedLoad(host string, load int) {
	if load < 0 {
		load = -1
	}
	t.stats(host).reported.Store(int64(load))
}

// ReportedLoad returns last load reported by the host.
// It returns false if host did not report its load.
func (t *Tracker) ReportedLoad(host string) (int, bool) {
	s, ok := t.hosts.Load(host)
	if !ok {
		return 0, false
	}
	n := s.reported.Load()
	if n < 0 {
		return 0, false
	}
	return int(n), true
}

// Remove forgets the host. In-flight calls of the host are still finished
// correctly but are not accounted anymore.
func (t *Tracker) Remove(host string) {
	t.hosts.Delete(host)
}

// Hosts returns sorted list of tracked hosts.
func (t *Tracker) Hosts() []string {
	var hosts []string
	t.hosts.Range(func(host string, _ *stats) bool {
		hosts = append(hosts, host)
		return true
	})
	sort.Strings(hosts)
	return hosts
}

func (t *Tracker) stats(host string) *stats {
	if s, ok := t.hosts.Load(host); ok {
		return s
	}
	s, _ := t.hosts.LoadOrStore(host, newStats())
	return s
}
