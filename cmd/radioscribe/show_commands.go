package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/preflight"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	var searchFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "shows",
		Short: "List catalog shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				var shows []*catalog.Show
				var err error
				switch {
				case searchFlag != "":
					shows, err = store.SearchShows(cmd.Context(), searchFlag, limit)
				case statusFlag != "":
					status, ok := catalog.ParseStatus(statusFlag)
					if !ok {
						return fmt.Errorf("unknown status %q", statusFlag)
					}
					shows, err = store.ShowsByStatus(cmd.Context(), status, limit)
				default:
					shows, err = store.ListShows(cmd.Context())
				}
				if err != nil {
					return err
				}
				if len(shows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No shows found")
					return nil
				}

				rows := make([][]string, 0, len(shows))
				for _, show := range shows {
					rows = append(rows, []string{
						strconv.FormatInt(show.ID, 10),
						show.PID,
						truncate(show.Title, 40),
						show.BroadcastDate,
						string(show.Status),
						truncate(show.ErrorMessage, 30),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "PID", "Title", "Broadcast", "Status", "Error"},
					rows,
					1,
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status")
	cmd.Flags().StringVar(&searchFlag, "search", "", "Search titles, descriptions, and episodes")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 = default)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|pid>",
		Short: "Show one catalog entry with its transcription artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				show, err := lookupShow(cmd, store, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %d\n", show.ID)
				fmt.Fprintf(out, "PID:       %s\n", show.PID)
				fmt.Fprintf(out, "Title:     %s\n", show.Title)
				if show.Episode != "" {
					fmt.Fprintf(out, "Episode:   %s\n", show.Episode)
				}
				if show.Metadata.Channel != "" {
					fmt.Fprintf(out, "Channel:   %s\n", show.Metadata.Channel)
				}
				fmt.Fprintf(out, "Broadcast: %s\n", show.BroadcastDate)
				if show.Duration > 0 {
					fmt.Fprintf(out, "Duration:  %ds\n", show.Duration)
				}
				fmt.Fprintf(out, "Status:    %s\n", show.Status)
				if show.DownloadPath != "" {
					fmt.Fprintf(out, "Audio:     %s\n", show.DownloadPath)
				}
				if show.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:     %s\n", show.ErrorMessage)
				}

				records, err := store.TranscriptionsForShow(cmd.Context(), show.ID)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No transcription artifacts")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						record.Format,
						record.Path,
						strconv.Itoa(record.WordCount),
						strconv.Itoa(record.Speakers),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Format", "Path", "Words", "Speakers"},
					rows,
					3, 4,
				))
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|pid>",
		Short: "Remove a show and its transcription records from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				show, err := lookupShow(cmd, store, args[0])
				if err != nil {
					return err
				}
				removed, err := store.RemoveShow(cmd.Context(), show.ID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("show %d no longer exists", show.ID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed show %d (%s)\n", show.ID, show.PID)
				return nil
			})
		},
	}
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <pid>",
		Short: "Fetch full programme metadata from the upstream catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entry, err := ctx.fetchClient(cfg).ShowInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PID:        %s\n", entry.PID)
			fmt.Fprintf(out, "Name:       %s\n", entry.Name)
			if entry.Episode != "" {
				fmt.Fprintf(out, "Episode:    %s\n", entry.Episode)
			}
			if entry.Channel != "" {
				fmt.Fprintf(out, "Channel:    %s\n", entry.Channel)
			}
			if entry.FirstBroadcast != "" {
				fmt.Fprintf(out, "Broadcast:  %s\n", entry.FirstBroadcast)
			}
			if seconds := entry.DurationSeconds(); seconds > 0 {
				fmt.Fprintf(out, "Duration:   %ds\n", seconds)
			}
			if entry.Categories != "" {
				fmt.Fprintf(out, "Categories: %s\n", entry.Categories)
			}
			if entry.Desc != "" {
				fmt.Fprintf(out, "\n%s\n", entry.Desc)
			}
			return nil
		},
	}
}

// lookupShow resolves a numeric row id or an upstream PID to a show.
func lookupShow(cmd *cobra.Command, store *catalog.Store, key string) (*catalog.Show, error) {
	var show *catalog.Show
	var err error
	if id, parseErr := strconv.ParseInt(key, 10, 64); parseErr == nil {
		show, err = store.GetShow(cmd.Context(), id)
	} else {
		show, err = store.GetShowByPID(cmd.Context(), key)
	}
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, fmt.Errorf("no show matching %q", key)
	}
	return show, nil
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline health and environment checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"pending", strconv.Itoa(health.Pending)},
					{"downloading", strconv.Itoa(health.Downloading)},
					{"downloaded", strconv.Itoa(health.Downloaded)},
					{"ready_for_transcription", strconv.Itoa(health.Ready)},
					{"transcribing", strconv.Itoa(health.Transcribing)},
					{"transcribed", strconv.Itoa(health.Transcribed)},
					{"error", strconv.Itoa(health.Errored)},
					{"total", strconv.Itoa(health.Total)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Shows"}, rows, 2))

				refresher := ctx.refresher(cfg, store, ctx.logger(cfg))
				if last, ok, err := refresher.LastRefresh(cmd.Context()); err == nil && ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Last catalog sweep: %s\n", last.Format("2006-01-02 15:04:05 MST"))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Last catalog sweep: never")
				}

				fmt.Fprintln(cmd.OutOrStdout(), "\nEnvironment:")
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					mark := "ok"
					if !result.Passed {
						mark = "FAIL"
						if result.Optional {
							mark = "skip"
						}
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %-22s %s\n", mark, result.Name, result.Detail)
				}
				return nil
			})
		},
	}
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
