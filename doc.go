// Package campanel serves a browser remote control for the CAM menu of a
// local MuMuDVB tuner service.
//
// A single endpoint plays two roles. Called with a valid proxy query it
// fetches /cam/menu.xml or /cam/action.xml from the tuner service on
// localhost and passes the XML through unchanged. Called any other way it
// returns the panel page, whose script polls the menu, renders it as a table
// and sends keypad presses.
//
// # Quick Start
//
//	panel, _ := campanel.New(campanel.WithPort(8080))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	panel.Start(ctx) // blocks until context is cancelled
//
// Then open http://localhost:8080/?port_server=4022 for the tuner listening
// on port 4022.
//
// # Query Parameters
//
//   - port_server: tuner service HTTP port (must be > 0 for proxying)
//   - query: 1 for the menu, 2 for a key press
//   - key: the single-character key for query=2
//
// A failed upstream fetch still answers 200 with
// <?xml version="1.0"?><error>wget error N</error>, where N is 4 for network
// failures and timeouts, 6 for authentication failures, 7 for redirect loops
// and 8 for other error replies.
//
// # Go Clients
//
// [Watcher] polls a running panel and reports each [MenuUpdate] to
// callbacks; [SendKey] presses one key:
//
//	w, _ := campanel.NewWatcher("http://localhost:8080/", 4022,
//	    campanel.WithUpdateCallback(func(u campanel.MenuUpdate) {
//	        fmt.Println(u.Status)
//	    }),
//	)
//	go w.Run(ctx)
//
//	update, _ := campanel.SendKey(ctx, "http://localhost:8080/", 4022, "M")
//
// # Architecture
//
//   - internal/dispatch: query classification and upstream URLs
//   - internal/fetch: bounded-timeout upstream GETs with diagnostic codes
//   - internal/menu: menu and action document parsing
//   - internal/poller: Go menu poller and key sender
//   - internal/server: chi router, page rendering, Prometheus metrics
//   - dashboard: embedded panel page
//
// The internal packages are not part of the public API and may change
// without notice.
package campanel
