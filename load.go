package loadring

// LoadReporter reports load of hosts as seen by their servers.
type LoadReporter interface {
	// ReportedLoad returns last load value reported by the host.
	// It returns false if host has not reported its load yet.
	ReportedLoad(host string) (load int, ok bool)
}
