package server

import (
	"html"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/menu"
)

const (
	// defaultTitle is used when no custom title is configured.
	defaultTitle = "CAM Menu Management"

	// defaultPollInterval matches the page's historical refresh rate.
	defaultPollInterval = 2 * time.Second

	// pagePath is the page template inside the assets filesystem.
	pagePath = "assets/index.html"
)

// placeholders replaced in the page template
const (
	titlePlaceholder    = "{{.Title}}"
	portPlaceholder     = "{{.PortField}}"
	intervalPlaceholder = "{{.PollIntervalMs}}"
	keypadPlaceholder   = "{{.Keypad}}"
)

// statusPlaceholders fills the page script's status lines from the menu
// package constants.
var statusPlaceholders = []string{
	"{{.StatusDisplayOK}}", menu.StatusDisplayOK,
	"{{.StatusNoData}}", menu.StatusNoData,
	"{{.StatusXMLError}}", menu.StatusXMLError,
	"{{.StatusNoResult}}", menu.StatusNoResult,
	"{{.StatusSending}}", menu.StatusSending,
	"{{.StatusQuerying}}", menu.StatusQuerying,
}

// servePage renders the panel page.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, req dispatch.PageRequest) {
	if s.assets == nil {
		http.Error(w, "Panel not found", http.StatusInternalServerError)
		return
	}

	content, err := fs.ReadFile(s.assets, pagePath)
	if err != nil {
		s.logger.Error("failed to read panel page", "error", err)
		http.Error(w, "Panel not found", http.StatusInternalServerError)
		return
	}

	title := s.cfg.Title
	if title == "" {
		title = defaultTitle
	}
	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	// title is user configuration and is escaped; the other values are generated
	rendered := strings.NewReplacer(append([]string{
		titlePlaceholder, html.EscapeString(title),
		portPlaceholder, portField(req.Port, s.cfg.DefaultUpstreamPort),
		intervalPlaceholder, strconv.FormatInt(interval.Milliseconds(), 10),
		keypadPlaceholder, keypad(),
	}, statusPlaceholders...)...).Replace(string(content))

	w.Header().Set("Content-Type", htmlContentType)
	if _, err := w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write panel response", "error", err)
	}
}

// portField renders the tuner port: fixed when the request supplied one,
// editable otherwise.
func portField(port, defaultPort int) string {
	if port > 0 {
		p := strconv.Itoa(port)
		return `<p>MuMuDVB HTTP port number: ` + p + `</p><input type="hidden" id="port_server" value="` + p + `">`
	}
	if defaultPort < 0 {
		defaultPort = 0
	}
	return `<p>MuMuDVB HTTP port number: <input id="port_server" type="text" value="` +
		strconv.Itoa(defaultPort) + `"> (&gt;0)</p>`
}

// keypadLabels maps special keys to their button labels and CSS classes.
var keypadLabels = map[string][2]string{
	dispatch.KeyCancel: {"Cancel", "button cancel"},
	dispatch.KeyMenu:   {"Enter Menu", "button menu"},
}

// keypad renders the key buttons three per row in [dispatch.Keys] order.
func keypad() string {
	var b strings.Builder
	b.WriteString(`<table id="TabKeys">`)
	for i, key := range dispatch.Keys {
		if i%3 == 0 {
			b.WriteString("<tr>")
		}
		label, class := key, "button"
		if special, ok := keypadLabels[key]; ok {
			label, class = special[0], special[1]
		}
		b.WriteString(`<td><input type="button" class="` + class + `" value="` + label +
			`" data-key="` + key + `"></td>`)
		if i%3 == 2 {
			b.WriteString("</tr>")
		}
	}
	b.WriteString(`</table>`)
	return b.String()
}
