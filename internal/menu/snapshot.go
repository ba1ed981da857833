package menu

import (
	"errors"
	"fmt"
)

// Status strings shown by the panel.
const (
	StatusDisplayOK = "Display OK"
	StatusNoData    = "No valid data received"
	StatusXMLError  = "Loaded with XML error"
	StatusNoResult  = "No result code found"
	StatusSending   = "Sending command..."
	StatusQuerying  = "[Query]"
)

var (
	// ErrMalformed reports a payload that is not well-formed XML.
	ErrMalformed = errors.New("malformed xml")

	// ErrNoData reports a well-formed document without the expected root
	// element (menu or action).
	ErrNoData = errors.New("no valid data")

	// ErrHTTPStatus reports a non-success reply from the dispatcher.
	ErrHTTPStatus = errors.New("http error")
)

// HTTPErrorStatus is the status shown for a non-success reply.
func HTTPErrorStatus(statusCode int) string {
	return fmt.Sprintf("Loaded with HTTP error %d", statusCode)
}

// HTTPStatusError wraps [ErrHTTPStatus] with the reply's status code.
func HTTPStatusError(statusCode int) error {
	return fmt.Errorf("%w %d", ErrHTTPStatus, statusCode)
}

// TransportErrorStatus is the status shown when the request itself failed.
func TransportErrorStatus(err error) string {
	return "Error: " + err.Error()
}

// Field is an optional text element.
type Field struct {
	Value string

	// Present is true when the element occurred exactly once.
	Present bool
}

// Item is one selectable menu entry.
type Item struct {
	// Index is the value of the item's first attribute.
	Index string
	Text  string
}

// Snapshot is the parsed content of a menu document.
type Snapshot struct {
	Datetime      Field
	CAMMenuString Field
	Object        Field
	Title         Field
	Subtitle      Field
	Items         []Item
	Bottom        Field
}

// Row is one labeled line of a rendered snapshot.
type Row struct {
	Label string
	Value string
}

// Rows returns the snapshot as labeled rows in display order. Absent fields
// are skipped; items keep document order.
func (s *Snapshot) Rows() []Row {
	rows := make([]Row, 0, 6+len(s.Items))
	add := func(label string, f Field) {
		if f.Present {
			rows = append(rows, Row{Label: label, Value: f.Value})
		}
	}

	add("Datetime", s.Datetime)
	add("CAM", s.CAMMenuString)
	add("Object", s.Object)
	add("Title", s.Title)
	add("Subtitle", s.Subtitle)
	for _, it := range s.Items {
		rows = append(rows, Row{Label: "Item #" + it.Index, Value: it.Text})
	}
	add("Bottom", s.Bottom)

	return rows
}

// ParseMenu parses a menu document.
//
// Returns an error wrapping [ErrMalformed] for unparseable payloads and
// [ErrNoData] when no menu element exists anywhere in the document.
func ParseMenu(data []byte) (*Snapshot, error) {
	doc, err := scan(data)
	if err != nil {
		return nil, err
	}
	if len(doc.byTag("menu")) == 0 {
		return nil, ErrNoData
	}

	snap := &Snapshot{
		Datetime:      doc.single("datetime"),
		CAMMenuString: doc.single("cammenustring"),
		Object:        doc.single("object"),
		Title:         doc.single("title"),
		Subtitle:      doc.single("subtitle"),
		Bottom:        doc.single("bottom"),
	}
	for _, el := range doc.byTag("item") {
		snap.Items = append(snap.Items, Item{Index: el.firstAttr(), Text: el.text})
	}
	return snap, nil
}

// ActionResult is the parsed content of an action document.
type ActionResult struct {
	Result Field
}

// Status returns the result text, or [StatusNoResult] when the document held
// no single result element.
func (a *ActionResult) Status() string {
	if !a.Result.Present {
		return StatusNoResult
	}
	return a.Result.Value
}

// ParseAction parses an action document.
//
// Returns an error wrapping [ErrMalformed] for unparseable payloads and
// [ErrNoData] when no action element exists anywhere in the document.
func ParseAction(data []byte) (*ActionResult, error) {
	doc, err := scan(data)
	if err != nil {
		return nil, err
	}
	if len(doc.byTag("action")) == 0 {
		return nil, ErrNoData
	}
	return &ActionResult{Result: doc.single("result")}, nil
}

// ParseStatus maps a parse error to the panel status string.
func ParseStatus(err error) string {
	switch {
	case err == nil:
		return StatusDisplayOK
	case errors.Is(err, ErrNoData):
		return StatusNoData
	default:
		return StatusXMLError
	}
}
