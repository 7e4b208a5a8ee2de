/*
Package resilience provides a circuit breaker for calls to remote services.

The hub wraps every oracle request in a Breaker so an unreachable model
endpoint fails fast instead of stalling chat and palette queries.

# Usage

	breaker := resilience.New("oracle", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Do(ctx, func(ctx context.Context) error {
		return client.Call(ctx)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open

Errors the caller caused by cancelling its context are not counted as
failures unless Settings.IsFailure says otherwise.
*/
package resilience
