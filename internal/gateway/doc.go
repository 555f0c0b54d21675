// Package gateway runs the BloodLink console server.
//
// # Overview
//
// The gateway owns every long-lived component: the SQLite store holding
// sessions and the activity log, the BloodLink REST client, the query cache
// with its invalidation notifier, and the web console routes.
//
// # HTTP Surface
//
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check (store ping)
//   - GET /static/... - Embedded console assets
//   - everything else - webadmin.Console routes
//
// Every request passes through request id, access log and panic recovery
// middleware, in that order.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	err = gw.Run(ctx)
//
// Run blocks until ctx is canceled, then shuts down with a five second
// deadline. Expired sessions are swept in the background while running.
package gateway
