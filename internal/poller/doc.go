// Package poller is the Go client for the panel dispatcher.
//
// It mirrors what the panel page does in the browser:
//
//   - [Poller]: requests the menu snapshot on a fixed interval until its
//     context is cancelled or [Poller.Stop] is called
//   - [Sender]: sends one key press per call and reports the result status
//   - [Target]: the request-scoped dispatcher URL and upstream port both use
//
// Every outcome, including transport and parse failures, is reported as a
// status string; nothing stops the polling loop except cancellation.
package poller
