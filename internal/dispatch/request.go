// Package dispatch classifies incoming panel requests.
//
// Classification is pure: [Parse] turns query parameters into either a
// [PageRequest] or a [ProxyRequest] before any I/O happens, so the validation
// rules can be tested without a network.
package dispatch

import (
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Query parameter names understood by the dispatcher.
const (
	ParamPort  = "port_server"
	ParamQuery = "query"
	ParamKey   = "key"
)

// Query values selecting proxy mode.
const (
	QueryMenu   = 1
	QueryAction = 2
)

// Upstream paths exposed by the local tuner service.
const (
	MenuPath   = "/cam/menu.xml"
	ActionPath = "/cam/action.xml"
)

// upstreamHost is fixed so callers can never point the proxy at another machine.
const upstreamHost = "localhost"

// Mode selects what a proxy request asks the upstream for.
type Mode int

const (
	// ModeMenu fetches the current menu snapshot.
	ModeMenu Mode = QueryMenu

	// ModeAction sends a key press.
	ModeAction Mode = QueryAction
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModeAction:
		return "action"
	default:
		return "unknown"
	}
}

// Request is the result of [Parse]: either a [PageRequest] or a [ProxyRequest].
type Request interface {
	isRequest()
}

// PageRequest asks for the HTML panel.
type PageRequest struct {
	// Port is the coerced port_server value; 0 means none was supplied.
	Port int
}

// ProxyRequest asks for an upstream document to be passed through.
type ProxyRequest struct {
	Port int
	Mode Mode

	// Key is the pressed key; empty unless Mode is ModeAction.
	Key string

	// URL is the full upstream URL to fetch.
	URL string
}

func (PageRequest) isRequest()  {}
func (ProxyRequest) isRequest() {}

// Parse classifies query parameters.
//
// Malformed values never produce an error: numbers coerce to 0 and keys that
// are not exactly one byte long coerce to empty. Proxy mode is selected iff
// port > 0 and either query is 1, or query is 2 with a non-empty key.
// When a parameter is repeated the last value wins.
func Parse(q url.Values) Request {
	return Classify(ParseNumber(lastValue(q, ParamPort)), ParseNumber(lastValue(q, ParamQuery)), ParseKey(lastValue(q, ParamKey)))
}

func lastValue(q url.Values, name string) string {
	vs := q[name]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// Classify applies the mode selection rule to already coerced values.
func Classify(port, query int, key string) Request {
	if port <= 0 {
		return PageRequest{Port: 0}
	}

	switch {
	case query == QueryMenu:
		return ProxyRequest{Port: port, Mode: ModeMenu, URL: UpstreamURL(port, ModeMenu, "")}
	case query == QueryAction && key != "":
		return ProxyRequest{Port: port, Mode: ModeAction, Key: key, URL: UpstreamURL(port, ModeAction, key)}
	default:
		return PageRequest{Port: port}
	}
}

// UpstreamURL builds the local service URL for a proxy request.
func UpstreamURL(port int, mode Mode, key string) string {
	base := "http://" + upstreamHost + ":" + strconv.Itoa(port)
	if mode == ModeAction {
		return base + ActionPath + "?" + ParamKey + "=" + url.QueryEscape(key)
	}
	return base + MenuPath
}

// numericPattern accepts decimal integers, fractions and exponents, with an
// optional sign. Hex, infinities and NaN are not numeric.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber coerces a query value to a non-negative integer.
//
// Surrounding whitespace is ignored and fractional values truncate toward
// zero. Missing, non-numeric or negative values yield 0; positive values too
// large for an int saturate at [math.MaxInt].
func ParseNumber(s string) int {
	s = strings.TrimSpace(s)
	if !numericPattern.MatchString(s) {
		return 0
	}

	n, err := strconv.ParseInt(s, 10, strconv.IntSize)
	switch {
	case err == nil:
		return max(int(n), 0)
	case errors.Is(err, strconv.ErrRange):
		if n < 0 {
			return 0
		}
		return math.MaxInt
	}

	// fractions and exponents; ParseFloat reports ±Inf on overflow
	f, _ := strconv.ParseFloat(s, 64)
	switch {
	case f <= 0:
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	default:
		return int(f)
	}
}

// ParseKey returns s when it is exactly one byte long, otherwise "".
func ParseKey(s string) string {
	if len(s) != 1 {
		return ""
	}
	return s
}

// PanelQuery builds the dispatcher query for a proxy request, as issued by
// the page script and the Go poller.
func PanelQuery(port int, mode Mode, key string) url.Values {
	q := url.Values{}
	q.Set(ParamPort, strconv.Itoa(port))
	q.Set(ParamQuery, strconv.Itoa(int(mode)))
	if mode == ModeAction {
		q.Set(ParamKey, key)
	}
	return q
}
