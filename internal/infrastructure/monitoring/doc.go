/*
Package monitoring provides Prometheus metrics for the hub.

Every Metrics value owns a private registry, so several hubs (or tests) can
coexist in one process. The registry also carries the Go runtime and process
collectors.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.SetWindowsOpen(3)
	metrics.RecordCommand("matched")

	timer := monitoring.NewTimer(metrics, "quick")
	// ... call the oracle ...
	timer.Stop("success")
*/
package monitoring
