// Package shutdown coordinates graceful termination of the server.
//
// Components register hooks with OnShutdown. Wait blocks until SIGINT,
// SIGTERM, context cancellation or Trigger, then runs the hooks in reverse
// registration order under a shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	if err := h.Wait(ctx); err != nil {
//		log.Error("shutdown", "error", err)
//	}
package shutdown
