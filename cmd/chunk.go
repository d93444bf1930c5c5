package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bnema/ghostreel/internal/application"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/spf13/cobra"
)

func newChunkCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Cut and manage reusable base clips",
	}

	cmd.AddCommand(
		newChunkCreateCmd(app),
		newChunkListCmd(app),
		newChunkInfoCmd(app),
		newChunkPurgeCmd(app),
	)

	return cmd
}

func newChunkCreateCmd(app *app) *cobra.Command {
	var source string
	var duration float64
	var count int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Cut chunks from raw source videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return errors.New("--count must be at least 1")
			}
			if duration < 0 {
				return errors.New("--duration must not be negative")
			}

			req := application.ChunkRequest{Source: strings.TrimSpace(source), Duration: duration}

			var result application.BatchResult
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Cutting chunks...", asJSON, func(ctx context.Context) error {
				switch {
				case count == 1:
					chunk, err := app.chunks.Create(ctx, req)
					if err != nil {
						return err
					}
					result.Created = append(result.Created, chunk)
				case req.Source == "" && req.Duration == 0:
					result = app.chunks.CreateBatch(ctx, count)
				default:
					result = app.chunks.CreateMany(ctx, count, req)
				}
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			for _, chunk := range result.Created {
				printf(cmd.OutOrStdout(), "%s\t%s\tstart=%.1fs\tduration=%.0fs\n", chunk.ID, sanitizeForTerminal(chunk.Source), chunk.StartOffset, chunk.Duration)
			}
			for _, msg := range result.Errors {
				printf(cmd.ErrOrStderr(), "error: %s\n", sanitizeForTerminal(msg))
			}
			if len(result.Created) == 0 && len(result.Errors) > 0 {
				return errors.New("no chunks created")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Raw source file name (default: random)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Chunk length in seconds (default: random 13-20)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of chunks to create")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newChunkListCmd(app *app) *cobra.Command {
	var limit int
	var source string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued chunks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chunks, err := app.chunks.ListAvailable(cmd.Context())
			if err != nil {
				return err
			}
			chunks = filterChunks(chunks, strings.TrimSpace(source), limit)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), chunks)
			}

			if len(chunks) == 0 {
				sources, _ := app.chunks.Sources()
				printf(cmd.OutOrStdout(), "No chunks. %d raw source(s) in %s\n", len(sources), app.cfg.Media.RawDir)
				return nil
			}
			for _, chunk := range chunks {
				printf(cmd.OutOrStdout(), "%s\t%s\t%.0fs\n", chunk.ID, sanitizeForTerminal(chunk.Source), chunk.Duration)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many chunks, newest first")
	cmd.Flags().StringVar(&source, "source", "", "Only chunks cut from this raw source")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// filterChunks keeps chunks cut from source, newest first, capped at limit.
// Zero values disable either filter.
func filterChunks(chunks []domain.Chunk, source string, limit int) []domain.Chunk {
	filtered := make([]domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if source != "" && chunk.Source != source {
			continue
		}
		filtered = append(filtered, chunk)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered
}

func newChunkInfoCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <chunk-id>",
		Short: "Show one chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chunk, err := app.chunks.Get(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), chunk)
			}

			out := cmd.OutOrStdout()
			printf(out, "id: %s\n", chunk.ID)
			printf(out, "file: %s\n", filepath.Base(chunk.Path))
			printf(out, "source: %s\n", sanitizeForTerminal(chunk.Source))
			printf(out, "start: %.2fs\n", chunk.StartOffset)
			printf(out, "duration: %.2fs\n", chunk.Duration)
			if !chunk.CreatedAt.IsZero() {
				printf(out, "created: %s\n", chunk.CreatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newChunkPurgeCmd(app *app) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete chunks older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}

			result := app.chunks.PurgeOlderThan(cmd.Context(), olderThan)
			printf(cmd.OutOrStdout(), "Removed %d chunk(s)\n", len(result.Removed))
			for _, msg := range result.Failed {
				printf(cmd.ErrOrStderr(), "error: %s\n", sanitizeForTerminal(msg))
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("purge incomplete: %d failure(s)", len(result.Failed))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Minimum age of purged chunks")

	return cmd
}
