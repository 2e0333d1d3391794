//go:build !loadring_debug

package loadring

const debug = false

func assertCapacities(*BoundedLoadRing, *loadSnapshot) {}
func setupBoundedLoadTrace(*BoundedLoadRing)           {}
