package blockedit

import (
	"context"
	"fmt"
	"strings"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/pkg/storage"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SkippedBlock is a stored block that could not be placed in the template.
type SkippedBlock struct {
	Id     string `json:"id"`
	Reason string `json:"reason"`
}

// Assembly is the rebuilt document plus how many stored blocks made it in.
type Assembly struct {
	Document string
	Total    int
	Replaced int
	Skipped  []SkippedBlock
}

type Assembler struct {
	repo   contract.HtmlBlockRepository
	store  storage.DocumentStore
	logger logger.ILogger
}

func NewAssembler(repo contract.HtmlBlockRepository, store storage.DocumentStore, logger logger.ILogger) *Assembler {
	return &Assembler{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Assemble splices the scope's stored blocks into the template at path and replaces
// the file with the result.
func (a *Assembler) Assemble(ctx context.Context, scope entity.Scope, path string) (*Assembly, error) {
	template, err := a.store.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read template: %w", ErrStorage, err)
	}

	rows, err := a.repo.FindAllByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: load blocks: %w", ErrStorage, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBlocks, scope.Key())
	}

	assembly, err := AssembleDocument(template, rows)
	if err != nil {
		return nil, err
	}

	for _, s := range assembly.Skipped {
		a.logger.Warn("BLOCKEDIT", "Block skipped during assembly", map[string]interface{}{
			"scope":    scope.Key(),
			"block_id": s.Id,
			"reason":   s.Reason,
		})
	}

	if err := a.store.Write(ctx, path, assembly.Document); err != nil {
		return nil, fmt.Errorf("%w: write document: %w", ErrStorage, err)
	}

	a.logger.Info("BLOCKEDIT", "Document assembled", map[string]interface{}{
		"scope":    scope.Key(),
		"path":     path,
		"replaced": assembly.Replaced,
		"total":    assembly.Total,
	})
	return assembly, nil
}

// AssembleDocument applies rows to template in the order given. Targets are looked up
// in the tree as mutated so far, and a row that replaces an element re-applies the
// blocks already spliced inside it. A row that cannot be placed is recorded in Skipped
// and the rest still apply.
func AssembleDocument(template string, rows []*entity.HtmlBlock) (*Assembly, error) {
	doc, err := parseDocument(template)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	out := &Assembly{Total: len(rows)}
	applied := make(map[string]string, len(rows))
	skip := func(id, reason string) {
		out.Skipped = append(out.Skipped, SkippedBlock{Id: id, Reason: reason})
	}

	for _, row := range rows {
		if row.IsStyle() {
			if reason := spliceStyle(doc, row.Content); reason != "" {
				skip(row.Id, reason)
				continue
			}
			out.Replaced++
			continue
		}

		parsed, err := parseDocument(row.Content)
		if err != nil {
			skip(row.Id, "content could not be parsed")
			continue
		}
		node := rootElement(parsed)
		if node == nil {
			skip(row.Id, "content has no root element")
			continue
		}

		id := elementID(node)
		if id == "" {
			if withID := findFirst(parsed, func(n *html.Node) bool {
				return n.Type == html.ElementNode && elementID(n) != ""
			}); withID != nil {
				id = elementID(withID)
			}
		}
		if id == "" {
			skip(row.Id, "content carries no id")
			continue
		}

		target := findByID(doc, id)
		if target == nil {
			skip(row.Id, fmt.Sprintf("no element with id %q in template", id))
			continue
		}

		node.Parent.RemoveChild(node)
		replaceNode(target, node)
		reapplyNested(node, applied, map[string]bool{id: true})
		applied[id] = row.Content
		out.Replaced++
	}

	out.Document, err = render(doc)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return out, nil
}

// reapplyNested walks below n and swaps every element whose id was already applied for
// a fresh copy of that block, outermost first. path holds the ids being restored on
// the current branch so self-nesting content cannot loop.
func reapplyNested(n *html.Node, applied map[string]string, path map[string]bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			if id := elementID(c); id != "" && !path[id] {
				if content, ok := applied[id]; ok {
					if fresh, err := parseRoot(content); err == nil && fresh != nil {
						replaceNode(c, fresh)
						path[id] = true
						reapplyNested(fresh, applied, path)
						delete(path, id)
						c = next
						continue
					}
				}
			}
		}
		reapplyNested(c, applied, path)
		c = next
	}
}

// spliceStyle swaps the first <style> in <head> for content, appending when the head
// has none. Bare CSS is wrapped in a <style> element.
func spliceStyle(doc *html.Node, content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(strings.ToLower(content), "<style") {
		content = "<style>" + content + "</style>"
	}

	head := findFirst(doc, func(n *html.Node) bool { return isElement(n, atom.Head) })
	if head == nil {
		return "template has no head"
	}

	nodes, err := html.ParseFragment(strings.NewReader(content), head)
	if err != nil {
		return "style content could not be parsed"
	}
	var style *html.Node
	for _, n := range nodes {
		if isElement(n, atom.Style) {
			style = n
			break
		}
	}
	if style == nil {
		return "style content has no style element"
	}

	if existing := findFirst(head, func(n *html.Node) bool { return isElement(n, atom.Style) }); existing != nil {
		replaceNode(existing, style)
	} else {
		head.AppendChild(style)
	}
	return ""
}
