/*
Package bestserver picks which of a list of equivalent servers to use next. What a server represents
is unknown to this package. The local resolver uses nameserver addresses from resolv.conf and the
DoH resolver uses server URLs.

After a server is used the caller reports how it went with Result() and that influences which server
Best() returns next.

	bs, err := bestserver.NewTraditional(bestserver.TraditionalConfig{}, servers)
	for {
		server, _ := bs.Best()
		ok, latency := doStuffWithServer(server.Name())
		bs.Result(server, ok, time.Now(), latency)
	}

Callers must not cache returns from Best() as a failure reported by another goroutine may have moved
the best server along.

The 'traditional' algorithm mimics nameserver selection by res_send(3) as described in
RESOLVER(3). The first server is used until it fails, then the next server is used until it fails
and so on, wrapping around at the end of the list.

Multiple goroutines can safely invoke all the Manager interface methods concurrently.
*/
package bestserver
