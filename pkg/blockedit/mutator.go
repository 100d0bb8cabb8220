package blockedit

import (
	"context"
	"fmt"
	"strings"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/pkg/llm"
)

// Mutation is the normalized rewrite of one block.
type Mutation struct {
	Content string
	IsStyle bool
	// RootId is the id carried by the rewritten root element, empty when absent.
	RootId string
	// Warning is set when the response had no usable root or id. Content is then
	// best effort.
	Warning string
}

type Mutator struct {
	provider  llm.LLMProvider
	directive string
	logger    logger.ILogger
}

func NewMutator(provider llm.LLMProvider, directive string, logger logger.ILogger) *Mutator {
	return &Mutator{
		provider:  provider,
		directive: directive,
		logger:    logger,
	}
}

func buildEditPrompt(block *entity.HtmlBlock, instruction string) string {
	return fmt.Sprintf("Edit the following HTML block according to the instruction:\n%q\n\nHTML block:\n%s",
		instruction, block.Content)
}

// Mutate asks the generation provider to rewrite block according to instruction and
// normalizes the answer to a single root element or raw style text.
func (m *Mutator) Mutate(ctx context.Context, block *entity.HtmlBlock, instruction string) (*Mutation, error) {
	raw, err := m.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: m.directive},
		{Role: "user", Content: buildEditPrompt(block, instruction)},
	}, llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("%w: rewrite block %q: %w", ErrCollaborator, block.Id, err)
	}

	mutation := Normalize(raw, block.IsStyle())
	if mutation.Warning != "" {
		m.logger.Warn("BLOCKEDIT", "Malformed generation", map[string]interface{}{
			"block_id": block.Id,
			"warning":  mutation.Warning,
		})
	} else if !mutation.IsStyle && mutation.RootId != block.Id {
		m.logger.Warn("BLOCKEDIT", "Rewritten block changed its id", map[string]interface{}{
			"block_id": block.Id,
			"root_id":  mutation.RootId,
		})
	}
	return mutation, nil
}

// Normalize turns a raw generation into one block. Responses that open with <style or
// mention :root are style text and are returned as is, as is anything produced for the
// style block.
func Normalize(raw string, styleBlock bool) *Mutation {
	text := StripCodeFence(raw)

	if styleBlock || strings.HasPrefix(text, "<style") || strings.Contains(text, ":root") {
		return &Mutation{Content: text, IsStyle: true}
	}

	root, err := parseRoot(text)
	if err != nil || root == nil {
		return &Mutation{Content: text, Warning: "response has no root element"}
	}

	content, err := render(root)
	if err != nil {
		return &Mutation{Content: text, Warning: "root element could not be serialized"}
	}

	mutation := &Mutation{Content: content, RootId: elementID(root)}
	if mutation.RootId == "" {
		mutation.Warning = "root element has no id"
	}
	return mutation
}
