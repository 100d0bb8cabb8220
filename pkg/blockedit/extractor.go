package blockedit

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"

	"ai-sitebuilder-be/internal/entity"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const fallbackIDPrefix = "block-"

// Extraction is the result of decomposing one document.
type Extraction struct {
	// Blocks in document order, style sentinel first when present. Scope is unset.
	Blocks []*entity.HtmlBlock
	// Document is the input re-serialized with every fallback id written in. It is
	// the template the assembler splices into.
	Document string
}

// IDs returns the block ids in extraction order.
func (e *Extraction) IDs() []string {
	ids := make([]string, 0, len(e.Blocks))
	for _, b := range e.Blocks {
		ids = append(ids, b.Id)
	}
	return ids
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract splits document into the head style sentinel and every
// header/section/footer/article element in document order, nested ones included.
// Elements without an id get "block-" + md5(inner markup)[:6]; a repeated id is
// rehashed with the element's ordinal until unique. Ids are written before any
// block is serialized, so an ancestor's content carries its descendants' ids.
func (e *Extractor) Extract(document string) (*Extraction, error) {
	doc, err := parseDocument(document)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	out := &Extraction{}

	if head := findFirst(doc, func(n *html.Node) bool { return isElement(n, atom.Head) }); head != nil {
		if style := findFirst(head, func(n *html.Node) bool { return isElement(n, atom.Style) }); style != nil {
			content, err := render(style)
			if err != nil {
				return nil, fmt.Errorf("render style: %w", err)
			}
			out.Blocks = append(out.Blocks, &entity.HtmlBlock{
				Id:      entity.StyleBlockId,
				Tag:     entity.TagStyle,
				Content: content,
			})
		}
	}

	seen := map[string]bool{entity.StyleBlockId: true}
	var matched []*html.Node
	var walkErr error

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && walkErr == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && structuralTags[c.DataAtom] {
				inner, err := renderChildren(c)
				if err != nil {
					walkErr = err
					return
				}

				id := elementID(c)
				if id == "" {
					id = fallbackID(inner)
				}
				for salt := len(matched); seen[id]; salt++ {
					id = fallbackID(inner + "#" + strconv.Itoa(salt))
				}
				seen[id] = true
				setAttr(c, "id", id)
				matched = append(matched, c)
			}
			walk(c)
		}
	}
	walk(doc)
	if walkErr != nil {
		return nil, fmt.Errorf("render block: %w", walkErr)
	}

	for _, n := range matched {
		content, err := render(n)
		if err != nil {
			return nil, fmt.Errorf("render block: %w", err)
		}
		out.Blocks = append(out.Blocks, &entity.HtmlBlock{
			Id:      elementID(n),
			Tag:     n.Data,
			Content: content,
		})
	}

	out.Document, err = render(doc)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return out, nil
}

func fallbackID(markup string) string {
	sum := md5.Sum([]byte(markup))
	return fallbackIDPrefix + hex.EncodeToString(sum[:])[:6]
}
