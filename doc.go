/*
Package loadring implements the routing core of a client side load balancer.

In general, the routing core maps a request key (an integer hash value) onto
one host from a weighted set of hosts. The word "consistent" means that it
produces the same mapping on different machines or processes without
additional state exchange and communication, and that membership changes move
only a fraction of keys to other hosts.

For more theory about the subject please see this great document:
https://theory.stanford.edu/~tim/s16/l/l1.pdf

There are several Ring implementations in this package:

ConsistentHashRing is a classic point based ring. Host with weight w owns w
points on the ring; lookup is a binary search over sorted points.

MPConsistentHashRing is a multi-probe ring. It keeps one bucket per host (or
few of them) and probes it several times per lookup, which gives balance
comparable to point based ring with a lot of points, using much less memory.
See https://arxiv.org/abs/1505.00062.

DistributionRing selects hosts randomly with probability proportional to
their weight. It is not capable of sticky routing.

BoundedLoadRing wraps any other Ring and redirects requests away from hosts
that have more in-flight requests than their fair share multiplied by a
balance factor. See https://arxiv.org/abs/1608.01350.

All rings are immutable once built: membership change requires a new ring.
Thus rings are safe for concurrent use without additional synchronization.
BoundedLoadRing holds the only mutable state, which is a load snapshot that
is replaced atomically as a whole and never blocks readers.
*/
package loadring
