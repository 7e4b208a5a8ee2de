/*
Package oracle is the hub's client for the generative AI backend.

Three modes share one transport: the NEXUS-AI chat persona (whole replies
or streamed chunks), the single-file site builder, and terse command
palette answers. Requests go through go-resty over a retrying transport,
a rate limiter and the resilience circuit breaker. Quick answers are
cached for ten minutes.

Callers that want the desktop's stock failure texts use Fallback(mode).
*/
package oracle
