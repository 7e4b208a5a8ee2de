/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span; the trace id is taken from the X-Trace-ID
header when a caller sent one and is echoed back on the response. The
oracle client forwards the same headers to the AI backend so one trace
covers both hops. Finished spans are logged through zap by a background
collector.

	tracer := tracing.New("zerohub", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
