package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/pkg/blockedit"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	blocksJSON bool

	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	idColor   = color.New(color.FgCyan, color.Bold)
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the generated page into blocks",
	Long: `Splits the project's index.html into top-level blocks, embeds every block and
replaces the project's stored index with the result.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var editCmd = &cobra.Command{
	Use:   "edit [instruction]",
	Short: "Apply a natural-language edit to the closest block",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Rebuild index.html from the stored blocks",
	Args:  cobra.NoArgs,
	RunE:  runAssemble,
}

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List the stored blocks of a project",
	Args:  cobra.NoArgs,
	RunE:  runBlocks,
}

func init() {
	blocksCmd.Flags().BoolVar(&blocksJSON, "json", false, "output blocks as JSON")
	rootCmd.AddCommand(ingestCmd, editCmd, assembleCmd, blocksCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}

	res, err := editService.Ingest(context.Background(), scope)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	out := cmd.OutOrStdout()
	okColor.Fprintf(out, "Indexed %d blocks for %s\n", len(res.Blocks), res.ProjectId)
	for _, b := range res.Blocks {
		fmt.Fprintf(out, "  %s <%s> %d bytes\n", idColor.Sprint(b.Id), b.Tag, b.Length)
	}
	if res.Purged > 0 {
		warnColor.Fprintf(out, "Removed %d stale blocks\n", res.Purged)
	}
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}

	instruction := strings.TrimSpace(args[0])
	if instruction == "" {
		return fmt.Errorf("instruction is empty")
	}

	res, err := editService.Edit(context.Background(), scope, &dto.EditSiteRequest{Instruction: instruction})
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if res.NothingToEdit {
		warnColor.Fprintln(out, res.Message)
		return nil
	}

	okColor.Fprintf(out, "Edited %s <%s>\n", idColor.Sprint(res.BlockId), res.Tag)
	for _, w := range res.Warnings {
		warnColor.Fprintf(out, "  warning: %s\n", w)
	}
	printAssembly(cmd, res.Replaced, res.Total, res.Skipped)
	return nil
}

func runAssemble(cmd *cobra.Command, _ []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}

	res, err := editService.Assemble(context.Background(), scope)
	if err != nil {
		return fmt.Errorf("assemble failed: %w", err)
	}

	printAssembly(cmd, res.Replaced, res.Total, res.Skipped)
	return nil
}

func runBlocks(cmd *cobra.Command, _ []string) error {
	scope, err := currentScope()
	if err != nil {
		return err
	}

	blocks, err := editService.ListBlocks(context.Background(), scope)
	if err != nil {
		return fmt.Errorf("list blocks failed: %w", err)
	}

	if blocksJSON {
		data, err := json.MarshalIndent(blocks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal blocks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(blocks) == 0 {
		cmd.Println("No blocks stored.")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, b := range blocks {
		fmt.Fprintf(out, "%s <%s> %d bytes, %d fields\n", idColor.Sprint(b.Id), b.Tag, len(b.Content), len(b.Fields))
	}
	return nil
}

func printAssembly(cmd *cobra.Command, replaced, total int, skipped []blockedit.SkippedBlock) {
	out := cmd.OutOrStdout()
	okColor.Fprintf(out, "Assembled %d of %d blocks\n", replaced, total)
	for _, s := range skipped {
		warnColor.Fprintf(out, "  skipped %s: %s\n", s.Id, s.Reason)
	}
}
