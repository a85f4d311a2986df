// Package resilience limits how much work a bg process takes on at once.
//
// A Bulkhead caps concurrent calls, optionally queueing callers for a
// bounded time before rejecting them:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
//	    Name:          "launcher",
//	    MaxConcurrent: 8,
//	    MaxWait:       2 * time.Second,
//	})
//	res, err := resilience.ExecuteWithResult(bh, ctx, func() (*process.Result, error) {
//	    return launcher.Launch(ctx, req)
//	})
//
// A nil *Bulkhead imposes no limit.
package resilience
