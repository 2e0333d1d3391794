//go:build loadring_debug

package loadring

import (
	"fmt"
	"log"
)

const debug = true

func assertCapacities(r *BoundedLoadRing, s *loadSnapshot) {
	var sum int64
	for _, host := range r.hosts {
		c := r.capacity(s, host)
		if c < 1 {
			panic(fmt.Sprintf(
				"loadring: internal error: capacity of %q is %d",
				host, c,
			))
		}
		sum += c
	}
	if sum < s.totalCapacity {
		panic(fmt.Sprintf(
			"loadring: internal error: capacities sum is %d; total capacity is %d",
			sum, s.totalCapacity,
		))
	}
}

func setupBoundedLoadTrace(r *BoundedLoadRing) {
	r.trace = r.trace.Compose(traceBoundedLoad{
		OnRefresh: func(skipped bool) {
			if skipped {
				log.Println("load snapshot refresh skipped")
			}
		},
		OnRedirect: func(from, to string) {
			log.Printf("redirect: %s is full; using %s", from, to)
		},
		OnOverflow: func(host string) {
			log.Printf("overflow: all hosts are full; using %s", host)
		},
	})
}
