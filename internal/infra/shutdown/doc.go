// Package shutdown provides graceful shutdown for deckshare.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM) as a cancelable context
//   - Cleanup hook registration, run once in reverse order
//   - A bounded context for the hooks
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(srv.Close)
//	<-ctx.Done()
//	h.Run()
package shutdown
