package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autoshow/internal/services"
	"autoshow/internal/shownotes"
)

func newNotesCommand(ctx *commandContext) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Inspect stored show notes",
	}
	notesCmd.AddCommand(newNotesListCommand(ctx))
	notesCmd.AddCommand(newNotesShowCommand(ctx))
	return notesCmd
}

func newNotesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored show notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListAll(cmd.Context())
			if err != nil {
				return services.Wrap(services.ErrPersistence, "cli", "list notes", "", err)
			}
			if asJSON {
				if records == nil {
					records = []shownotes.Record{}
				}
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No show notes stored yet")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.PublishDate,
					truncate(rec.Title, 48),
					orDash(rec.TranscriptionService),
					orDash(rec.LLMService),
					formatDollars(rec.FinalCost),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Published", "Title", "Transcription", "LLM", "Cost"}, rows, 0, 5))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newNotesShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored show note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id < 1 {
				return services.Wrap(services.ErrValidation, "cli", "show note", fmt.Sprintf("invalid id %q", args[0]), nil)
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.GetByID(cmd.Context(), id)
			if errors.Is(err, shownotes.ErrNotFound) {
				return services.Wrap(services.ErrValidation, "cli", "show note", fmt.Sprintf("no show note with id %d", id), nil)
			}
			if err != nil {
				return services.Wrap(services.ErrPersistence, "cli", "show note", "", err)
			}
			if asJSON {
				return writeJSON(cmd, rec)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s\n", rec.ID, rec.Title)
			fmt.Fprintf(out, "  Link:          %s\n", rec.ShowLink)
			fmt.Fprintf(out, "  Channel:       %s\n", orDash(rec.Channel))
			fmt.Fprintf(out, "  Published:     %s\n", rec.PublishDate)
			fmt.Fprintf(out, "  Transcription: %s %s (%s)\n", orDash(rec.TranscriptionService), rec.TranscriptionModel, formatDollars(rec.TranscriptionCost))
			fmt.Fprintf(out, "  LLM:           %s %s (%s)\n", orDash(rec.LLMService), rec.LLMModel, formatDollars(rec.LLMCost))
			fmt.Fprintf(out, "  Total cost:    %s\n", formatDollars(rec.FinalCost))
			if body := strings.TrimSpace(rec.LLMOutput); body != "" {
				fmt.Fprintf(out, "\n%s\n", body)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
