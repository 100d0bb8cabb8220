package entity

import (
	"fmt"
	"time"
)

const (
	// StyleBlockId identifies the page-level <style> block. There is exactly one per document.
	StyleBlockId = "head-style"
	TagStyle     = "style"
)

// Scope partitions every block and vector lookup. OwnerId is the chat identity,
// ProjectId the project within that chat.
type Scope struct {
	OwnerId   int64
	ProjectId string
}

// Key is used for lease names and log fields.
func (s Scope) Key() string {
	return fmt.Sprintf("%d:%s", s.OwnerId, s.ProjectId)
}

// Folder is the on-disk directory name of the scope's generated site.
func (s Scope) Folder() string {
	return fmt.Sprintf("%d__%s", s.OwnerId, s.ProjectId)
}

type HtmlBlock struct {
	Id        string
	Scope     Scope
	Tag       string
	Content   string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (b HtmlBlock) IsStyle() bool {
	return b.Id == StyleBlockId
}
