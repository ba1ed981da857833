// Package fetch performs the bounded-timeout HTTP GETs used by the panel.
//
// The package serves both sides of the panel:
//
//   - [Fetcher]: the upstream fetcher used by the dispatcher. It requests the
//     local tuner service and reports failures as [Error] values carrying a
//     wget-compatible diagnostic code.
//   - [Client]: the underlying HTTP client wrapper, also used by the Go poller
//     to query the dispatcher itself.
//
// Users of the campanel library should not need to interact with this
// package directly.
package fetch
