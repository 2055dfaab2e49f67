// Package resilience holds fault-tolerance helpers for outbound calls.
//
// The fetch service depends on one external service it does not control,
// the passthrough proxy behind the fallback transport. Its calls run through
// circuitbreaker so a failing proxy is skipped quickly instead of adding a
// full timeout to every failed direct fetch:
//
//	b := circuitbreaker.New(circuitbreaker.ProxyConfig())
//	resp, err := circuitbreaker.Do(b, func() (*fetch.RawResponse, error) {
//	    return callProxy(ctx)
//	})
package resilience
