package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/download"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the programme cache and discover new shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				refresher := ctx.refresher(cfg, store, ctx.logger(cfg))
				added, err := refresher.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Discovered %d new show(s)\n", added)
				return nil
			})
		},
	}
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var showID int64
	var pid string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download one pending show by id or PID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showID == 0 && pid == "" {
				return fmt.Errorf("one of --show-id or --pid is required")
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				var show *catalog.Show
				var err error
				if showID != 0 {
					show, err = store.GetShow(cmd.Context(), showID)
				} else {
					show, err = store.GetShowByPID(cmd.Context(), pid)
				}
				if err != nil {
					return err
				}
				if show == nil {
					return fmt.Errorf("show not found")
				}

				scheduler := ctx.scheduler(cfg, store, ctx.logger(cfg))
				claimed, err := scheduler.DownloadShow(cmd.Context(), show)
				if err != nil {
					return err
				}
				if !claimed {
					fmt.Fprintf(cmd.OutOrStdout(), "Show %d is not pending (status %s); nothing to do\n", show.ID, show.Status)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Downloaded show %d (%s)\n", show.ID, show.PID)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&showID, "show-id", 0, "Catalog id of the show to download")
	cmd.Flags().StringVar(&pid, "pid", "", "Programme PID of the show to download")
	return cmd
}

func newProcessPendingCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "process-pending",
		Short: "Download pending shows, most recent broadcast first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				scheduler := ctx.scheduler(cfg, store, ctx.logger(cfg))
				done, err := scheduler.ProcessPending(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d show(s)\n", done)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum shows to download (0 uses fetch.max_per_run)")
	return cmd
}

func newCheckReadyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-ready",
		Short: "Promote downloaded shows whose audio is on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				checker := download.NewReadinessChecker(store, ctx.logger(cfg))
				promoted, err := checker.CheckReady(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Promoted %d show(s) to ready_for_transcription\n", promoted)
				return nil
			})
		},
	}
}

func newTranscribeNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe-next",
		Short: "Transcribe the next ready show",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				poller := ctx.poller(cfg, store, ctx.logger(cfg))
				processed, err := poller.ProcessNext(cmd.Context())
				if err != nil {
					return err
				}
				if !processed {
					fmt.Fprintln(cmd.OutOrStdout(), "No shows ready for transcription")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Transcription complete")
				return nil
			})
		},
	}
}

func newResetStuckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return shows stranded in transcribing to the ready queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				reset, err := store.ResetStuckTranscribing(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d show(s)\n", reset)
				return nil
			})
		},
	}
}

func newClearErrorsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-errors",
		Short: "Remove errored shows from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				removed, err := store.ClearErrored(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d errored show(s)\n", removed)
				return nil
			})
		},
	}
}
