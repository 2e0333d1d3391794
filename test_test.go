package loadring

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gobwas/loadring/hashfunc"
	"github.com/gobwas/loadring/metrics"
	"github.com/gobwas/loadring/xrand"
)

// staticLoads is a fixed table of host loads. It serves both as concurrency
// tracker and as reported loads source. Hosts missing in the table have zero
// concurrency and no reported load.
type staticLoads map[string]int

func (s staticLoads) Concurrency(host string) int {
	return s[host]
}

func (s staticLoads) ReportedLoad(host string) (int, bool) {
	n, has := s[host]
	return n, has
}

// countingMetrics counts recorded events.
type countingMetrics struct {
	redirects atomic.Int64
	overflows atomic.Int64
	refreshed atomic.Int64
	skipped   atomic.Int64
	unmapped  atomic.Int64
	fallbacks atomic.Int64
}

var _ metrics.Collector = (*countingMetrics)(nil)

func (m *countingMetrics) RecordBoundedLoadRedirect() { m.redirects.Add(1) }
func (m *countingMetrics) RecordBoundedLoadOverflow() { m.overflows.Add(1) }
func (m *countingMetrics) RecordPowerOfTwoFallback()  { m.fallbacks.Add(1) }

func (m *countingMetrics) RecordSnapshotRefresh(skipped bool) {
	if skipped {
		m.skipped.Add(1)
	} else {
		m.refreshed.Add(1)
	}
}

func (m *countingMetrics) RecordUnmappedKeys(_ string, n int) {
	m.unmapped.Add(int64(n))
}

type logEntry struct {
	level string
	msg   string
}

// recordLogger remembers every logged message.
type recordLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *recordLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *recordLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordLogger) Error(msg string, _ ...any) { l.add("error", msg) }

func (l *recordLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level, msg})
}

func (l *recordLogger) count(level string) (n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// fakeRing maps hash values to hosts with a fixed table.
type fakeRing struct {
	get   map[int32]string
	order []string
}

func (r *fakeRing) Get(hash int32) (string, bool) {
	host, has := r.get[hash]
	return host, has
}

func (r *fakeRing) Iterator(int32) Iterator {
	return &sliceIterator{hosts: r.order}
}

func (r *fakeRing) IsStickyRoutingCapable() bool { return true }
func (r *fakeRing) IsEmpty() bool                { return len(r.order) == 0 }

// fakeHash returns fixed hash values.
type fakeHash struct {
	short int32
	long  int64
	// unsupported makes HashLong fail with hashfunc.ErrUnsupported.
	unsupported bool
	err         error
}

func (h fakeHash) Hash(*url.URL) (int32, error) {
	return h.short, h.err
}

func (h fakeHash) HashLong(*url.URL) (int64, error) {
	if h.unsupported {
		return 0, fmt.Errorf("fake: %w", hashfunc.ErrUnsupported)
	}
	return h.long, h.err
}

// hostNames returns n host names sorted lexicographically.
func hostNames(n int) []string {
	hosts := make([]string, n)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("host%03d", i)
	}
	sort.Strings(hosts)
	return hosts
}

func scalePoints(weights map[string]float64, scale int) PointsMap {
	points := make(PointsMap, len(weights))
	for host, w := range weights {
		points[host] = int(w * float64(scale))
	}
	return points
}

// getDistribution returns share (in percents) of numGet random hash values
// mapped onto each host.
func getDistribution(t testing.TB, r Ring, seed int64, numGet int) map[string]float64 {
	var (
		rnd = xrand.New(seed)
		tmp = make(map[string]int)
		act = make(map[string]float64)
	)
	for i := 0; i < numGet; i++ {
		host, ok := r.Get(rnd.Int32())
		if !ok {
			t.Fatalf("unexpected empty result")
		}
		tmp[host]++
	}
	for host, num := range tmp {
		act[host] = float64(num) / float64(numGet) * 100
	}
	return act
}

func assertDistribution(t testing.TB, act, exp map[string]float64, prec float64) {
	t.Helper()
	for key, act := range act {
		exp := exp[key]
		diff := act - exp
		if math.Abs(diff) > prec {
			t.Errorf(
				"unexpected distribution for %q key: %.2f; want %.2f "+
					"(±%.2f%%, diff is %+.2f%%))",
				key, act, exp, prec, diff,
			)
		}
	}
	for key := range exp {
		if _, has := act[key]; !has && exp[key] > prec {
			t.Errorf("no values mapped to %q key; want %.2f", key, exp[key])
		}
	}
}
