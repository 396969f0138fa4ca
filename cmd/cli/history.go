package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-review-api/internal/gitutil"
	"github.com/sevigo/code-review-api/internal/storage"
	"github.com/sevigo/code-review-api/internal/wire"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history <pr-url | owner/name#number | owner/name number>",
	Short: "Shows the latest saved review of a pull request",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		req, err := gitutil.ParseTarget(args)
		if err != nil {
			return fmt.Errorf("invalid pull request: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, cleanup, err := wire.InitializeStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer cleanup()

		saved, err := store.GetLatestReviewForPR(ctx, req.Repo, req.PRNumber)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				warnColor.Printf("No saved review for %s#%d.\n", req.Repo, req.PRNumber)
				return nil
			}
			return fmt.Errorf("failed to load review: %w", err)
		}

		if historyJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(saved)
		}

		titleColor.Printf("📋 %s#%d at %s (%s)\n\n", saved.RepoFullName, saved.PRNumber, shortSHA(saved.HeadSHA), saved.CreatedAt.Format(time.RFC822))

		filenames := make([]string, 0, len(saved.Reviews))
		for name := range saved.Reviews {
			filenames = append(filenames, name)
		}
		slices.Sort(filenames)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FILE\tREVIEW LENGTH")
		for _, name := range filenames {
			fmt.Fprintf(w, "%s\t%d\n", name, len(saved.Reviews[name]))
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(historyCmd)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
