package bestserver

import (
	"time"
)

// TraditionalConfig is passed to NewTraditional.
type TraditionalConfig struct {
	// OnFailover, if set, is called each time a failure moves Best() along to the next server. It
	// is called with the Manager locked so it must not call back into the Manager.
	OnFailover func(from, to Server)
}

type traditional struct {
	TraditionalConfig
	baseManager
}

func NewTraditional(config TraditionalConfig, servers []Server) (*traditional, error) {
	t := &traditional{TraditionalConfig: config}
	err := t.baseManager.init(TraditionalAlgorithm, servers)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Result only acts on failure of the current best server. Failures of other servers are assumed
// to be stale reports from goroutines which obtained Best() before the last failover.
func (t *traditional) Result(server Server, success bool, now time.Time, latency time.Duration) bool {
	t.lock()
	defer t.unlock()

	ix, found := t.serverToIndex[server]
	if !found {
		return false
	}

	if success || ix != t.bestIndex {
		return true
	}

	t.bestIndex = (t.bestIndex + 1) % t.serverCount
	if t.OnFailover != nil {
		t.OnFailover(server, t.servers[t.bestIndex])
	}

	return true
}
