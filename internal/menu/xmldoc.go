package menu

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// utf8BOM prefixes every document the tuner service emits.
var utf8BOM = []byte{0xef, 0xbb, 0xbf}

var (
	errNoRoot          = errors.New("no root element")
	errMultipleRoots   = errors.New("multiple root elements")
	errTextOutsideRoot = errors.New("text outside root element")
)

// element is one occurrence of a tag in a scanned document.
type element struct {
	attrs []xml.Attr

	// text is the character data of the first child node, if that node is text.
	text string

	// hasChild is set once the first child node has been seen.
	hasChild bool
}

// firstAttr returns the value of the element's first attribute, or "".
func (e *element) firstAttr() string {
	if len(e.attrs) == 0 {
		return ""
	}
	return e.attrs[0].Value
}

// document indexes every element of a well-formed XML document by local name,
// in document order.
type document struct {
	elements map[string][]*element
}

// byTag returns all elements named tag, in document order.
func (d *document) byTag(tag string) []*element {
	return d.elements[tag]
}

// single returns the text of tag when it occurs exactly once.
func (d *document) single(tag string) Field {
	els := d.elements[tag]
	if len(els) != 1 {
		return Field{}
	}
	return Field{Value: els[0].text, Present: true}
}

// scan parses data into a document, rejecting anything that is not a single
// well-formed XML element tree.
func scan(data []byte) (*document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &document{elements: make(map[string][]*element)}

	var (
		stack []*element
		roots int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				roots++
				if roots > 1 {
					return nil, fmt.Errorf("%w: %w", ErrMalformed, errMultipleRoots)
				}
			} else {
				stack[len(stack)-1].hasChild = true
			}
			el := &element{attrs: t.Attr}
			doc.elements[t.Name.Local] = append(doc.elements[t.Name.Local], el)
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: %w", ErrMalformed, errTextOutsideRoot)
				}
				continue
			}
			if top := stack[len(stack)-1]; !top.hasChild {
				top.text = string(t)
				top.hasChild = true
			}

		case xml.Comment:
			if len(stack) > 0 {
				stack[len(stack)-1].hasChild = true
			}
		}
	}

	if roots == 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, errNoRoot)
	}
	return doc, nil
}
