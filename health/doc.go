// Package health reports whether the gateway can serve requests.
//
// A Checker reports one component as healthy, degraded or unhealthy. The
// Aggregator runs every registered checker concurrently under a shared
// timeout, and the gin handlers expose the results:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewPingChecker("ledger", gormLedger))
//	agg.Register(health.NewCacheChecker(memCache))
//	health.RegisterRoutes(router, agg)
//
// /healthz answers liveness and never runs checks. /readyz answers 503
// when any check is unhealthy. /health returns every result as JSON.
package health
