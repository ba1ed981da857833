// Package mockcam emulates the CAM menu endpoints of a MuMuDVB instance for
// local testing of the panel.
//
// It serves /cam/menu.xml and /cam/action.xml with the same document shape
// as the real service: a UTF-8 byte order mark, CDATA text, and items
// numbered through their first attribute.
package mockcam

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Results reported by /cam/action.xml.
const (
	ResultOK             = "OK"
	ResultUnknownKey     = "ERROR: Unknown key!"
	ResultNotInitialized = "ERROR: CAM not initialized!"
)

const (
	bom        = "\xef\xbb\xbf"
	xmlHeader  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	menuString = "Mock CAM"
)

// page is one screen of the emulated CAM menu.
type page struct {
	title    string
	subtitle string
	items    []string
	bottom   string

	// next maps an item number to the page it opens
	next map[int]string
}

var pages = map[string]page{
	"main": {
		title:    "Mock CAM main menu",
		subtitle: "Select an entry",
		items:    []string{"Subscription status", "Event status", "Tokens status"},
		bottom:   "Press 0 to exit",
		next:     map[int]string{1: "subscription", 2: "event", 3: "tokens"},
	},
	"subscription": {
		title:  "Subscription status",
		items:  []string{"Package A valid until 31/12", "Package B expired"},
		bottom: "Press 0 to go back",
	},
	"event": {
		title:  "Event status",
		items:  []string{"No event running"},
		bottom: "Press 0 to go back",
	},
	"tokens": {
		title:  "Tokens status",
		items:  []string{"Credit: 0 tokens"},
		bottom: "Press 0 to go back",
	},
}

// CAM is the emulated module. Its zero value is not usable; call [New].
type CAM struct {
	initialized bool
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	current string // "" when no menu is open
}

// New creates a [CAM]. An uninitialized CAM answers every valid key with
// [ResultNotInitialized] and never shows a menu.
func New(initialized bool, logger *slog.Logger) *CAM {
	if logger == nil {
		logger = slog.Default()
	}
	return &CAM{
		initialized: initialized,
		logger:      logger,
		now:         time.Now,
	}
}

// Handler returns the HTTP routes of the emulated service.
func (c *CAM) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/cam/menu.xml", c.handleMenu)
	mux.HandleFunc("/cam/action.xml", c.handleAction)
	return mux
}

// Press applies one key and returns the action result text.
func (c *CAM) Press(key string) string {
	if len(key) != 1 || !strings.Contains("0123456789MCO", key) {
		return ResultUnknownKey
	}
	if !c.initialized {
		return ResultNotInitialized
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current
	switch {
	case key == "M":
		c.current = "main"
	case key == "C":
		c.current = ""
	case key == "0":
		if c.current == "main" {
			c.current = ""
		} else if c.current != "" {
			c.current = "main"
		}
	case key >= "1" && key <= "9":
		if p, ok := pages[c.current]; ok {
			if next, ok := p.next[int(key[0]-'0')]; ok {
				c.current = next
			}
		}
	}
	// O is accepted but changes nothing

	if prev != c.current {
		c.logger.Info("cam menu changed", "key", key, "from", prev, "to", c.current)
	}
	return ResultOK
}

// Current returns the name of the open page, "" when none.
func (c *CAM) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *CAM) handleMenu(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString(bom + xmlHeader + "<menu>\n")

	datetime := c.datetime()
	switch current := c.Current(); {
	case !c.initialized:
		writeField(&b, "datetime", datetime)
		writeField(&b, "object", "NONE")
		writeField(&b, "title", "CAM not initialized!")
	case current == "":
		writeField(&b, "datetime", datetime)
		writeField(&b, "cammenustring", menuString)
		writeField(&b, "object", "NONE")
		writeField(&b, "title", "No menu to display")
	default:
		p := pages[current]
		writeField(&b, "datetime", datetime)
		writeField(&b, "cammenustring", menuString)
		writeField(&b, "object", "MENU")
		writeField(&b, "title", p.title)
		if p.subtitle != "" {
			writeField(&b, "subtitle", p.subtitle)
		}
		for i, item := range p.items {
			fmt.Fprintf(&b, "\t<item num=\"%d\"><![CDATA[%s]]></item>\n", i+1, item)
		}
		writeField(&b, "bottom", p.bottom)
	}

	b.WriteString("</menu>\n")
	writeXML(w, b.String())
}

func (c *CAM) handleAction(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	result := c.Press(key)

	// the real service echoes only the first byte of the key
	echoed := key
	if len(echoed) > 1 {
		echoed = echoed[:1]
	}

	var b strings.Builder
	b.WriteString(bom + xmlHeader + "<action>\n")
	writeField(&b, "datetime", c.datetime())
	writeField(&b, "key", echoed)
	writeField(&b, "result", result)
	b.WriteString("</action>\n")
	writeXML(w, b.String())
}

// datetime formats the current time like C's ctime without the newline.
func (c *CAM) datetime() string {
	return c.now().Format(time.ANSIC)
}

func writeField(b *strings.Builder, tag, value string) {
	fmt.Fprintf(b, "\t<%s><![CDATA[%s]]></%s>\n", tag, value, tag)
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml; charset=UTF-8")
	_, _ = w.Write([]byte(body))
}
