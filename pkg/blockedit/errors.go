package blockedit

import "errors"

var (
	// ErrCollaborator wraps failures of the embedding or generation provider.
	ErrCollaborator = errors.New("collaborator call failed")
	// ErrStorage wraps failures of the block index or the document store.
	ErrStorage = errors.New("storage failure")
	// ErrNoBlocks is returned when a scope has nothing to assemble.
	ErrNoBlocks = errors.New("no blocks stored for scope")
	// ErrNothingToEdit is returned when no stored block matches an edit target.
	ErrNothingToEdit = errors.New("nothing to edit")
)
