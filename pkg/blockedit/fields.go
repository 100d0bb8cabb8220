package blockedit

import (
	"fmt"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type FieldKind string

const (
	FieldText  FieldKind = "text"
	FieldImage FieldKind = "image"
	FieldLink  FieldKind = "link"
)

// FieldValue is the content of one addressable element inside a block. Which members
// are meaningful depends on Kind: Text uses Text, Image uses URL, Link uses Href and Text.
type FieldValue struct {
	Kind FieldKind `json:"kind" validate:"required,oneof=text image link"`
	Text string    `json:"text,omitempty"`
	URL  string    `json:"url,omitempty"`
	Href string    `json:"href,omitempty"`
}

func Text(s string) FieldValue {
	return FieldValue{Kind: FieldText, Text: s}
}

func Image(url string) FieldValue {
	return FieldValue{Kind: FieldImage, URL: url}
}

func Link(href, text string) FieldValue {
	return FieldValue{Kind: FieldLink, Href: href, Text: text}
}

// FieldError reports a field id that ApplyFields could not set.
type FieldError struct {
	Id     string `json:"id"`
	Reason string `json:"reason"`
}

// phrasing elements may sit inside a text field; their markup is replaced with the text.
var phrasing = map[atom.Atom]bool{
	atom.A:      true,
	atom.Abbr:   true,
	atom.B:      true,
	atom.Br:     true,
	atom.Code:   true,
	atom.Em:     true,
	atom.I:      true,
	atom.Mark:   true,
	atom.S:      true,
	atom.Small:  true,
	atom.Span:   true,
	atom.Strong: true,
	atom.Sub:    true,
	atom.Sup:    true,
	atom.U:      true,
}

// holdsElements reports whether n has a descendant that a text write would destroy:
// anything addressable, or anything beyond inline phrasing.
func holdsElements(n *html.Node) bool {
	return findFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && (elementID(c) != "" || !phrasing[c.DataAtom])
	}) != nil
}

// kindOf classifies an addressable element. Containers are not fields.
func kindOf(n *html.Node) (FieldKind, bool) {
	switch n.DataAtom {
	case atom.Img:
		return FieldImage, true
	case atom.A:
		return FieldLink, true
	}
	if holdsElements(n) {
		return "", false
	}
	return FieldText, true
}

func forEachField(root *html.Node, fn func(id string, n *html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if id := elementID(c); id != "" {
					fn(id, c)
				}
			}
			walk(c)
		}
	}
	walk(root)
}

// ExtractFields maps the id of every field element below the block root to its value.
// Containers holding other elements are left out.
func ExtractFields(content string) (map[string]FieldValue, error) {
	root, err := parseRoot(content)
	if err != nil {
		return nil, fmt.Errorf("parse block: %w", err)
	}
	fields := make(map[string]FieldValue)
	if root == nil {
		return fields, nil
	}

	forEachField(root, func(id string, n *html.Node) {
		kind, ok := kindOf(n)
		if !ok {
			return
		}
		switch kind {
		case FieldImage:
			src, _ := getAttr(n, "src")
			fields[id] = Image(src)
		case FieldLink:
			href, _ := getAttr(n, "href")
			fields[id] = Link(href, textContent(n))
		default:
			fields[id] = Text(textContent(n))
		}
	})
	return fields, nil
}

func setText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// ApplyFields writes values into the matching elements of the block and returns the
// new block markup. Unknown ids, containers and kind mismatches are reported, not
// fatal, and leave the element as it was.
func ApplyFields(content string, values map[string]FieldValue) (string, []FieldError, error) {
	root, err := parseRoot(content)
	if err != nil {
		return "", nil, fmt.Errorf("parse block: %w", err)
	}
	if root == nil {
		return "", nil, fmt.Errorf("block has no root element")
	}

	nodes := make(map[string]*html.Node)
	forEachField(root, func(id string, n *html.Node) {
		if _, ok := nodes[id]; !ok {
			nodes[id] = n
		}
	})

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var fieldErrs []FieldError
	for _, id := range ids {
		v := values[id]
		n, ok := nodes[id]
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Id: id, Reason: "unknown field"})
			continue
		}
		kind, ok := kindOf(n)
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Id: id, Reason: "element holds other elements"})
			continue
		}
		if kind != v.Kind {
			fieldErrs = append(fieldErrs, FieldError{Id: id, Reason: fmt.Sprintf("field is %s, got %s", kind, v.Kind)})
			continue
		}
		if v.Kind == FieldLink && v.Text != "" && holdsElements(n) {
			fieldErrs = append(fieldErrs, FieldError{Id: id, Reason: "link text would replace nested elements"})
			continue
		}

		switch v.Kind {
		case FieldImage:
			setAttr(n, "src", v.URL)
		case FieldLink:
			setAttr(n, "href", v.Href)
			if v.Text != "" {
				setText(n, v.Text)
			}
		default:
			setText(n, v.Text)
		}
	}

	out, err := render(root)
	if err != nil {
		return "", nil, fmt.Errorf("render block: %w", err)
	}
	return out, fieldErrs, nil
}
