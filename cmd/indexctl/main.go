package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobmatch-be/internal/bootstrap"
	"jobmatch-be/internal/config"
	"jobmatch-be/internal/entity"
	"jobmatch-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var operator = entity.Principal{UserId: uuid.Nil, Role: entity.RoleAdmin}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "indexctl",
		Short:         "Inspect and operate the matching index queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "Print machine-readable JSON")

	root.AddCommand(
		newStatsCmd(),
		newStatusCmd(),
		newRequestCmd(),
		newResetExhaustedCmd(),
		newDrainCmd(),
	)
	return root
}

func loadContainer() (*bootstrap.Container, error) {
	cfg := config.Load()

	var db *gorm.DB
	if cfg.Database.StorageDriver != "memory" {
		if cfg.Database.Connection == "" {
			return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
		}
		conn, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db = conn
	}
	return bootstrap.NewContainer(db, cfg)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func jsonMode(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func parseDocumentArgs(args []string) (entity.DocumentType, uuid.UUID, error) {
	documentType, err := entity.ParseDocumentType(args[0])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%q: %w", args[0], err)
	}
	documentId, err := uuid.Parse(args[1])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("invalid document id %q: %w", args[1], err)
	}
	return documentType, documentId, nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by indexing status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			stats, err := c.IndexingService.GetStats(cmd.Context(), operator)
			if err != nil {
				return err
			}
			if jsonMode(cmd) {
				return printJSON(stats)
			}

			fmt.Printf("%-12s %d\n", "pending", stats.Pending)
			fmt.Printf("%-12s %d\n", "processing", stats.Processing)
			color.Green("%-12s %d", "indexed", stats.Indexed)
			if stats.Failed > 0 {
				color.Red("%-12s %d", "failed", stats.Failed)
			} else {
				fmt.Printf("%-12s %d\n", "failed", stats.Failed)
			}
			color.Cyan("%-12s %d", "total", stats.Total)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job|candidate> <document-id>",
		Short: "Show the indexing record of one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentType, documentId, err := parseDocumentArgs(args)
			if err != nil {
				return err
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.IndexingService.GetStatus(cmd.Context(), operator, documentType, documentId)
			if err != nil {
				return err
			}
			if jsonMode(cmd) {
				return printJSON(res)
			}

			fmt.Printf("%s %s: %s (retries %d)\n", res.DocumentType, res.DocumentId, res.Status, res.RetryCount)
			if res.ErrorMessage != "" {
				color.Yellow("last error: %s", res.ErrorMessage)
			}
			return nil
		},
	}
}

func newRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "request <job|candidate> <document-id>",
		Short: "Queue a document for (re-)indexing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentType, documentId, err := parseDocumentArgs(args)
			if err != nil {
				return err
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.IndexingService.RequestIndexing(cmd.Context(), documentId, documentType)
			if err != nil {
				return err
			}
			if jsonMode(cmd) {
				return printJSON(res)
			}
			color.Green("Queued %s %s (status %s)", res.DocumentType, res.DocumentId, res.Status)
			return nil
		},
	}
}

func newResetExhaustedCmd() *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "reset-exhausted",
		Short: "Re-queue records that used up their retry budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			var documentType *entity.DocumentType
			if typeFlag != "" {
				parsed, err := entity.ParseDocumentType(typeFlag)
				if err != nil {
					return fmt.Errorf("%q: %w", typeFlag, err)
				}
				documentType = &parsed
			}

			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.IndexingService.ResetExhausted(cmd.Context(), documentType)
			if err != nil {
				return err
			}
			if jsonMode(cmd) {
				return printJSON(res)
			}
			color.Green("Re-queued %d record(s)", res.Reset)
			return nil
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "Limit to one document type (job or candidate)")
	return cmd
}

func newDrainCmd() *cobra.Command {
	var maxTicks int
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Process the pending queue in the foreground until it is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res := c.Worker.Drain(ctx, maxTicks)
			if jsonMode(cmd) {
				return printJSON(res)
			}
			if res.Skipped {
				color.Yellow("Another instance holds the worker lease; nothing processed by this run")
			}
			fmt.Printf("claimed %d, succeeded %d, released %d\n", res.Claimed, res.Succeeded, res.Released)
			if res.Failed > 0 {
				color.Red("failed %d", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Stop after this many ticks (0 means until empty)")
	return cmd
}
