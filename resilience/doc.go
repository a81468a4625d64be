// Package resilience paces calls to rate-limited external APIs.
//
//	lim := resilience.NewLimiter(5, 5)
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
package resilience
