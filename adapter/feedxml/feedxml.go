// Package feedxml parses arbitrary, frequently non-conforming feed XML
// into a generic node tree and extracts fields from it without assuming a
// shape. Third-party feeds represent the same logical field as plain
// character data, CDATA, or an attribute, so every field access goes
// through the accessors here instead of struct tags.
package feedxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var ErrNoElements = errors.New("feedxml: document has no elements")

// Node is one parsed element. Names are lowercased local names with any
// namespace prefix dropped, so content:encoded is reachable as "encoded"
// and dc:date as "date".
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node

	text strings.Builder
}

type Document struct {
	Root *Node
}

// Parse tokenizes data into a Document. It is deliberately lenient:
// non-strict XML, declared charsets, and trailing garbage after the root
// element are all tolerated. A decode error after the root element has
// been seen salvages whatever was parsed up to that point.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if root != nil {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: strings.ToLower(t.Name.Local)}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[strings.ToLower(a.Name.Local)] = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			// CDATA sections arrive here too, already unwrapped.
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, ErrNoElements
	}
	return &Document{Root: root}, nil
}

// Text returns the element's own character data, trimmed.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text.String())
}

// First returns the first descendant reached by walking path one child
// name at a time, or nil when any hop is missing.
func (n *Node) First(path ...string) *Node {
	cur := n
	for _, name := range path {
		if cur == nil {
			return nil
		}
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		cur = next
	}
	return cur
}

// All returns every direct child with the given name.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Field is the candidate-path extractor: it returns the text of the first
// named child that carries any, and the empty string when none does. It
// never fails; a missing key is just an empty result.
func (n *Node) Field(candidates ...string) string {
	if n == nil {
		return ""
	}
	for _, name := range candidates {
		if v := n.First(name).Text(); v != "" {
			return v
		}
	}
	return ""
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}
