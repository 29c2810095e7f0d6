package bestserver

import (
	"time"
)

// Server is a member of a bestserver collection. The caller supplies the underlying struct, which
// normally also carries per-server statistics.
type Server interface {
	Name() string
}

// Manager is the public interface for bestserver.
type Manager interface {
	// Algorithm returns the name of the implementation
	Algorithm() string

	// Best returns the current best server and its index into the server list as originally
	// supplied. It always returns valid values.
	Best() (Server, int)

	// Result records the outcome of using server and may change what Best() returns next.
	//
	// server must be exactly the value returned by Best() as it is used as a map key. It is
	// passed in rather than assumed because another goroutine may have changed the best server
	// in the meantime.
	//
	// Return false if server is not part of this collection
	Result(server Server, success bool, now time.Time, latency time.Duration) bool

	// Servers returns a slice of all Servers in the order originally created.
	Servers() []Server

	// Len returns the count of servers
	Len() int
}
