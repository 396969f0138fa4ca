package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/gitutil"
	"github.com/sevigo/code-review-api/internal/review"
	"github.com/sevigo/code-review-api/internal/wire"
)

var (
	verbose    bool
	outputJSON bool
	markdown   bool
	saveResult bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var reviewCmd = &cobra.Command{
	Use:   "review <pr-url | owner/name#number | owner/name number>",
	Short: "Review every changed file of a GitHub Pull Request",
	Long: `Review every changed file of a GitHub Pull Request.

Each changed file is fetched at the PR head commit and sent to the
configured model. Files over the line limit, files that cannot be fetched
and failed inference calls are reported per file without aborting the run.

Examples:
  review-cli review https://github.com/owner/repo/pull/123
  review-cli review owner/repo#123
  review-cli review --markdown owner/repo 123`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	reviewCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the review as JSON")
	reviewCmd.Flags().BoolVar(&markdown, "markdown", false, "Render the review as markdown")
	reviewCmd.Flags().BoolVar(&saveResult, "save", false, "Save the review to the configured database")
	rootCmd.AddCommand(reviewCmd)
}

// stepTimer tracks timing for verbose output
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{totalSteps: totalSteps, verbose: verbose}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Printf("\n🔧 Step %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else if !outputJSON {
		fmt.Printf("%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if t.verbose {
		elapsed := time.Since(t.start).Round(time.Millisecond)
		successColor.Printf("   ✓ Done (%s)\n", elapsed)
		for _, d := range details {
			dimColor.Printf("   └── %s\n", d)
		}
	}
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	req, err := gitutil.ParseTarget(args)
	if err != nil {
		return fmt.Errorf("invalid pull request: %w\n\nExpected: https://github.com/owner/repo/pull/123, owner/repo#123 or owner/repo 123", err)
	}

	timer := newStepTimer(2, verbose)
	overallStart := time.Now()

	if !outputJSON {
		titleColor.Println("🚀 Code Review - PR Review")
		dimColor.Printf("   Target: %s#%d\n\n", req.Repo, req.PRNumber)
	}

	timer.step("Initializing review pipeline")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\n\nTip: Set GITHUB_TOKEN or pass --github-token", err)
	}
	orchestrator, err := wire.InitializeReviewer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize reviewer: %w", err)
	}
	timer.done(fmt.Sprintf("model %s via %s", cfg.AI.GeneratorModel, cfg.AI.LLMProvider))

	timer.step("Reviewing changed files")
	result, err := orchestrator.ReviewPullRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to review PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	timer.done(formatCounts(result))

	if saveResult {
		if err := save(ctx, result); err != nil {
			errorColor.Printf("⚠️  Failed to save review: %v\n", err)
		}
	}

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	switch {
	case outputJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"status":    "success",
			"repo":      result.Repo,
			"pr_number": result.PRNumber,
			"reviews":   result.Messages(),
		})
	case markdown:
		return printMarkdown(result)
	default:
		printReview(result)
		return nil
	}
}

func save(ctx context.Context, result *core.PullRequestReview) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, cleanup, err := wire.InitializeStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return store.SaveReview(ctx, &core.Review{
		RepoFullName: result.Repo,
		PRNumber:     result.PRNumber,
		HeadSHA:      result.HeadSHA,
		Reviews:      result.Messages(),
	})
}

func formatCounts(result *core.PullRequestReview) string {
	counts := result.Counts()
	return fmt.Sprintf("%d files: %d reviewed, %d too large, %d fetch failed, %d inference failed",
		len(result.Outcomes),
		counts[core.OutcomeReviewed],
		counts[core.OutcomeSkippedTooLarge],
		counts[core.OutcomeFetchFailed],
		counts[core.OutcomeInferenceFailed])
}

func printMarkdown(result *core.PullRequestReview) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(review.FormatMarkdown(result))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}

func printReview(result *core.PullRequestReview) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Printf("📋 REVIEW %s#%d\n", result.Repo, result.PRNumber)
	titleColor.Println(separator)

	if len(result.Outcomes) == 0 {
		fmt.Println()
		successColor.Println("✅ No changed files to review.")
		return
	}

	filenames := make([]string, 0, len(result.Outcomes))
	for name := range result.Outcomes {
		filenames = append(filenames, name)
	}
	slices.Sort(filenames)

	for _, name := range filenames {
		outcome := result.Outcomes[name]
		fmt.Println()
		warnColor.Println(thinSeparator)
		printKindBadge(outcome.Kind)
		boldColor.Printf(" %s\n", name)
		warnColor.Println(thinSeparator)
		infoColor.Println(outcome.Message())
	}
	fmt.Println()
}

func printKindBadge(kind core.OutcomeKind) {
	switch kind {
	case core.OutcomeReviewed:
		color.New(color.BgGreen, color.FgWhite, color.Bold).Printf(" %s ", kind)
	case core.OutcomeSkippedTooLarge:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", kind)
	case core.OutcomeFetchFailed, core.OutcomeInferenceFailed:
		color.New(color.BgRed, color.FgWhite).Printf(" %s ", kind)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", kind)
	}
}
