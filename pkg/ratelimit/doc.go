// Package ratelimit paces calls to the Unsplash API.
//
// Two mechanisms are combined by the fetch loop:
//
//   - Pause sleeps a fixed delay between items and honours cancellation.
//   - TokenBucket caps the number of API calls per hour. Demo keys are
//     limited to 50 requests per hour, so the default bucket matches that.
//
// Usage:
//
//	limiter := ratelimit.New(50)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	// call the API
//	_ = ratelimit.Pause(ctx, time.Second)
package ratelimit
