package blockedit

import (
	"ai-sitebuilder-be/internal/entity"
)

// Propagate returns copies of the rows whose markup is stale once edited holds its new
// content. Blocks nested inside edited take their markup from it; blocks that contain
// edited get the new markup spliced in at its id. Rows that already match are left out.
func Propagate(rows []*entity.HtmlBlock, edited *entity.HtmlBlock) []*entity.HtmlBlock {
	if edited == nil || edited.IsStyle() {
		return nil
	}
	editedRoot, err := parseRoot(edited.Content)
	if err != nil || editedRoot == nil {
		return nil
	}

	var stale []*entity.HtmlBlock
	for _, row := range rows {
		if row.IsStyle() || row.Id == edited.Id {
			continue
		}

		var content string
		if inner := findByID(editedRoot, row.Id); inner != nil {
			if content, err = render(inner); err != nil {
				continue
			}
		} else {
			root, err := parseRoot(row.Content)
			if err != nil || root == nil {
				continue
			}
			spot := findByID(root, edited.Id)
			if spot == nil {
				continue
			}
			fresh, err := parseRoot(edited.Content)
			if err != nil || fresh == nil {
				continue
			}
			replaceNode(spot, fresh)
			if content, err = render(root); err != nil {
				continue
			}
		}

		if content == row.Content {
			continue
		}
		updated := *row
		updated.Content = content
		stale = append(stale, &updated)
	}
	return stale
}
