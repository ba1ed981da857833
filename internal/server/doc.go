// Package server provides the HTTP server for the CAM panel.
//
// This package is internal to campanel and handles all HTTP concerns:
//
//   - Dispatcher: GET "/" either proxies a menu or key request to the local
//     tuner service and passes its XML through verbatim, or renders the panel
//     page. Both modes send cache-defeating headers.
//   - Health: GET "/healthz"
//   - Metrics: GET "/metrics" in the Prometheus text format
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the campanel library should not need to interact with this
// package directly. The server is started by [campanel.Panel.Start].
package server
