package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/onboarding-backend/internal/app"
	"github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/catalog"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/extract"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/pdfutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "onboarding: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "onboarding",
		Short:        "Employee onboarding content backend",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newPlanCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the key-value table for the sql backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(cmd.Context())
		},
	}
}

// plan builds the offline study plan for a local file, without calling
// the completion endpoint.
func newPlanCmd() *cobra.Command {
	var (
		req   onboarding.PlanRequest
		style string
		start string
	)
	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Print the fallback study plan for a text or PDF file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args[0])
			if err != nil {
				return err
			}
			req.LearningStyle = onboarding.ParseLearningStyle(style)
			if start != "" {
				t, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("invalid --start %q: %w", start, err)
				}
				req.StartDate = t
			}

			plan := extract.New(catalog.Load(logger.NewNop())).FallbackStudyPlan(content, req)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Plan title")
	cmd.Flags().IntVar(&req.Days, "days", onboarding.DefaultPlanDays, "Number of days")
	cmd.Flags().IntVar(&req.TimeAvailable, "minutes", onboarding.DefaultTimeAvailable, "Minutes available per day")
	cmd.Flags().StringVar(&style, "style", "", "Learning style (visual, auditory, reading, kinesthetic)")
	cmd.Flags().StringVar(&req.Goals, "goals", "", "Free-text learning goals")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	return cmd
}

func readContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfutil.ExtractText(data)
	}
	return string(data), nil
}
