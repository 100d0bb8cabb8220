package blockedit

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var structuralTags = map[atom.Atom]bool{
	atom.Header:  true,
	atom.Section: true,
	atom.Footer:  true,
	atom.Article: true,
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func elementID(n *html.Node) string {
	id, _ := getAttr(n, "id")
	return strings.TrimSpace(id)
}

// findFirst walks the subtree below n in document order, n excluded.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	return findFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && elementID(c) == id
	})
}

func render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderChildren(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func parseDocument(s string) (*html.Node, error) {
	return html.Parse(strings.NewReader(s))
}

// rootElement picks the single node a generated fragment stands for: the first element
// child of <body>, or else the first element outside the html/head/body scaffolding.
func rootElement(doc *html.Node) *html.Node {
	if body := findFirst(doc, func(n *html.Node) bool { return isElement(n, atom.Body) }); body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return c
			}
		}
	}
	return findFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		switch n.DataAtom {
		case atom.Html, atom.Head, atom.Body:
			return false
		}
		return true
	})
}

// parseRoot parses content and detaches its root element so it can be grafted into
// another tree.
func parseRoot(content string) (*html.Node, error) {
	doc, err := parseDocument(content)
	if err != nil {
		return nil, err
	}
	root := rootElement(doc)
	if root != nil && root.Parent != nil {
		root.Parent.RemoveChild(root)
	}
	return root, nil
}

func replaceNode(old, replacement *html.Node) {
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// StripCodeFence removes a surrounding markdown fence such as ```html ... ```.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
