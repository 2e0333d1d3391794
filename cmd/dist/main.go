package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"net/url"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gobwas/avl"

	"github.com/gobwas/loadring"
	"github.com/gobwas/loadring/config"
	"github.com/gobwas/loadring/hashfunc"
	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/tracker"
	"github.com/gobwas/loadring/xrand"
)

const objectPattern = `/objects/(\w+)`

func main() {
	var (
		p       int     // Number of goroutines.
		n       int     // Number of objects.
		s       int     // Number of servers on the ring.
		algs    string  // Comma-separated algorithms list.
		probes  int     // Number of multi-probe ring probes.
		points  int     // Number of points per server.
		balance float64 // Bounded load balancing factor.
		cfgPath string  // Optional service configuration file.
		seed    int64
		csv     bool

		verbose bool
		silent  bool
	)
	flag.IntVar(&p,
		"parallelism", runtime.NumCPU(),
		"number of concurrent processors",
	)
	flag.IntVar(&n,
		"objects", 1e6,
		"number of objects to spread on ring",
	)
	flag.IntVar(&s,
		"servers", 10,
		"number of servers to place on ring",
	)
	flag.StringVar(&algs,
		"algorithms", "pointBased,multiProbe,distributionBased",
		"comma-separated list of ring algorithms",
	)
	flag.IntVar(&probes,
		"probes", loadring.DefaultNumProbes,
		"number of probes of multi-probe ring",
	)
	flag.IntVar(&points,
		"points", 100,
		"number of points per server",
	)
	flag.Float64Var(&balance,
		"balance", 0,
		"bounded load balancing factor; zero disables bounded load",
	)
	flag.StringVar(&cfgPath,
		"config", "",
		"path to yaml service configuration; overrides ring flags",
	)
	flag.Int64Var(&seed,
		"seed", time.Now().UnixNano(),
		"random seed",
	)
	flag.BoolVar(&verbose,
		"v", false,
		"be verbose",
	)
	flag.BoolVar(&silent,
		"s", false,
		"be silent",
	)
	flag.BoolVar(&csv,
		"csv", true,
		"print csv to standard output",
	)

	flag.Parse()

	logf := func(f string, args ...interface{}) {
		if !verbose {
			return
		}
		log.Printf(f, args...)
	}
	printf := func(f string, args ...interface{}) {
		if silent {
			return
		}
		fmt.Fprintf(os.Stderr, f, args...)
	}
	logger := logging.Logger(logging.NewNop())
	if verbose {
		logger = logging.NewSlog(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	// Prepare list of jobs. Each job simulates single ring configuration.
	// We use tree to autofix duplicates (if any).
	var (
		jobs avl.Tree
		hash hashfunc.Function[*url.URL]
		err  error
	)
	if cfgPath != "" {
		svc, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		hash, err = svc.HashFunction(
			hashfunc.WithSeed(seed),
			hashfunc.WithLogger(logger),
		)
		if err != nil {
			log.Fatal(err)
		}
		if svc.Ring.PointsPerHost > 0 {
			points = svc.Ring.PointsPerHost
		}
		jobs, _ = jobs.Insert(job{
			index:  0,
			alg:    svc.Ring.Algorithm,
			probes: svc.Ring.NumProbes,
			points: points,
			factor: svc.Ring.BoundedLoadBalancingFactor,
		})
	} else {
		hash, err = hashfunc.New(hashfunc.MethodURIRegex, map[string]any{
			hashfunc.KeyRegexes: []string{objectPattern},
		})
		if err != nil {
			log.Fatal(err)
		}
		for i, a := range strings.Split(algs, ",") {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			jobs, _ = jobs.Insert(job{
				index:  i,
				alg:    loadring.Algorithm(a),
				probes: probes,
				points: points,
				factor: balance,
			})
		}
	}
	logf("%d jobs are ready", jobs.Size())

	// Prepare servers to be put on ring(s).
	rnd := xrand.New(seed)
	servers := make([]string, s)
	seenSrv := make(map[string]bool)
	for i := 0; i < s; {
		b := rnd.Int31()
		srv := fmt.Sprintf("%d.%d.%d.%d", 10, byte(b>>16), byte(b>>8), byte(b))
		if seenSrv[srv] {
			logf("#%d server duplicated; repeat", i)
			continue
		}
		seenSrv[srv] = true
		servers[i] = srv
		i++
	}
	logf("%d servers are ready", len(servers))

	// Prepare objects to be spread across servers on ring(s).
	objects := make([]*url.URL, n)
	seenObj := make(map[string]bool)
	for i := 0; i < n; {
		obj := fmt.Sprintf("%016x", rnd.Int63n(math.MaxInt64))
		if seenObj[obj] {
			logf("#%d object duplicated; repeat", i)
			continue
		}
		seenObj[obj] = true
		objects[i] = &url.URL{
			Scheme: "http",
			Host:   "dist",
			Path:   "/objects/" + obj,
		}
		i++
	}
	logf("%d objects are ready", len(objects))

	mean := float64(n) / float64(s)

	var (
		work    = make(chan job)
		stop    = make(chan struct{})
		done    = make(chan struct{}, p)
		results = make(chan result, 1)
	)
	for i := 0; i < p; i++ {
		go func() {
			defer func() {
				done <- struct{}{}
			}()
			for {
				var j job
				select {
				case <-stop:
					return
				case j = <-work:
					// Process below.
				}
				r, err := simulate(j, servers, objects, hash, mean, seed, logger)
				if err != nil {
					log.Fatalf("%s: %v", j, err)
				}
				results <- r
			}
		}()
	}

	go func() {
		jobs.InOrder(func(x avl.Item) bool {
			select {
			case <-stop:
				return false
			case work <- x.(job):
				return true
			}
		})
		close(stop)
		for i := 0; i < p; i++ {
			<-done
		}
		close(results)
	}()

	var t avl.Tree
	for r := range results {
		t, _ = t.Insert(r)
		printf(".")
	}
	printf("\n")

	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	t.InOrder(func(x avl.Item) bool {
		r := x.(result)
		var (
			devPct  = r.stddev / float64(n) * 100
			diffPct = float64(r.maxDiff) / float64(n) * 100
		)
		logf(
			"%s: stddev=%.2f(%.2f%%) maxdiff=%d(%.2f%%) load=[%d..%d] latency=%s\n",
			r.job,
			r.stddev, devPct,
			r.maxDiff, diffPct,
			r.minLoad, r.maxLoad,
			r.latency,
		)
		if csv {
			fmt.Fprintf(tw,
				"%s,\t%.4f,\t%.4f,\t%d,\t%d,\t%.2f\n",
				r.job, devPct, diffPct,
				r.minLoad, r.maxLoad,
				r.latency.Seconds()*1000,
			)
		}
		return true
	})
	tw.Flush()

	printf("OK")
}

// simulate builds the ring described by j and routes every object through
// it. Objects are never completed, so load tracked for each server grows as
// objects are routed.
func simulate(
	j job,
	servers []string,
	objects []*url.URL,
	hash hashfunc.Function[*url.URL],
	mean float64,
	seed int64,
	logger logging.Logger,
) (result, error) {
	trk := tracker.New()
	f, err := loadring.NewRingFactory(loadring.FactoryConfig{
		Algorithm:                  j.alg,
		NumProbes:                  j.probes,
		PointsPerHost:              j.pointsPerHost(),
		BoundedLoadBalancingFactor: j.factor,
	}, trk,
		loadring.WithLogger(logger),
		loadring.WithSeed(seed),
	)
	if err != nil {
		return result{}, err
	}

	pts := make(loadring.PointsMap, len(servers))
	for _, srv := range servers {
		pts[srv] = j.weight()
	}
	start := time.Now()
	ring, err := f.NewRing(pts)
	if err != nil {
		return result{}, err
	}
	latency := time.Since(start)

	sticky := ring.IsStickyRoutingCapable()
	for _, obj := range objects {
		var h int32
		if sticky {
			if h, err = hash.Hash(obj); err != nil {
				return result{}, err
			}
		}
		srv, ok := ring.Get(h)
		if !ok {
			return result{}, fmt.Errorf("no server for %s", obj)
		}
		trk.StartCall(srv)
	}

	r := result{
		job:     j,
		latency: latency,
		minLoad: math.MaxInt,
	}
	var variance float64
	for _, srv := range servers {
		c := trk.Concurrency(srv)
		variance += math.Pow(float64(c)-mean, 2)
		if d := int(math.Abs(float64(c) - mean)); d > r.maxDiff {
			r.maxDiff = d
		}
		r.minLoad = min(r.minLoad, c)
		r.maxLoad = max(r.maxLoad, c)
	}
	// Divide by number of servers as for mean.
	variance /= float64(len(servers))
	r.stddev = math.Sqrt(variance)

	return r, nil
}

type job struct {
	index  int
	alg    loadring.Algorithm
	probes int
	points int
	factor float64
}

func (j job) Compare(x avl.Item) int {
	return j.index - x.(job).index
}

func (j job) String() string {
	if j.factor > 1 {
		return fmt.Sprintf("%s+bounded(%.2f)", j.alg, j.factor)
	}
	return string(j.alg)
}

// weight returns weight of each server. Point based ring places as many
// points as server weight; other rings use weight as relative share only.
func (j job) weight() int {
	if j.alg == "" || j.alg == loadring.AlgorithmPointBased {
		return j.points
	}
	return 1
}

func (j job) pointsPerHost() int {
	if j.alg == loadring.AlgorithmMultiProbe {
		return j.points
	}
	return 0
}

type result struct {
	job     job
	latency time.Duration
	stddev  float64
	maxDiff int
	minLoad int
	maxLoad int
}

func (r result) Compare(x avl.Item) int {
	return r.job.Compare(x.(result).job)
}
