package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine"
	"github.com/rshade/carbonfocus/internal/engine/batch"
	"github.com/rshade/carbonfocus/internal/persist"
)

// NewActivityPreviewCmd creates the "activity preview" command. It resolves
// the activity key and factor and prints the calculation without storing it.
func NewActivityPreviewCmd() *cobra.Command {
	var spec ActivitySpec

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the emissions of one activity",
		Example: `  # Grid electricity in Germany
  carbonfocus activity preview -c 2.1 -q 1000 -u kWh --region DE

  # Diesel spend converted through the system fuel price
  carbonfocus activity preview -c 1.2 --amount 500 --currency USD --fuel diesel

  # Business travel by rail
  carbonfocus activity preview -c 3.6 -m distance -q 420 -u km --mode rail --passengers 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runActivityPreview(cmd, spec)
		},
	}
	bindActivityFlags(cmd, &spec)
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runActivityPreview(cmd *cobra.Command, spec ActivitySpec) error {
	ctx := cmd.Context()
	input, err := spec.ToInput()
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	result, err := eng.Preview(ctx, input)
	if err != nil {
		logger.Debug().Ctx(ctx).Str("operation", "activity_preview").Err(err).Msg("preview failed")
		return fmt.Errorf("preview failed: %w", err)
	}

	if outputFormat() == config.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return renderEmissionResult(cmd.OutOrStdout(), result)
}

// NewActivitySubmitCmd creates the "activity submit" command. The activity is
// previewed first; preview warnings are shown but never block submission.
func NewActivitySubmitCmd() *cobra.Command {
	var (
		spec        ActivitySpec
		description string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Preview and store one activity in the persistence service",
		Long: `Previews the activity and stores it in the persistence service configured
under persistence.url (or CARBONFOCUS_PERSIST_URL).

Submission is not idempotent: running the command twice stores two activities.
Service errors are reported as returned and are never retried.`,
		Example: `  carbonfocus activity submit -c 2.1 -q 1000 -u kWh --region DE \
    --description "Office electricity, March" --date 2025-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runActivitySubmit(cmd, spec, description, date)
		},
	}
	bindActivityFlags(cmd, &spec)
	cmd.Flags().StringVar(&description, "description", "", "free-text description stored with the activity")
	cmd.Flags().StringVar(&date, "date", "", "activity date (YYYY-MM-DD); defaults to today")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runActivitySubmit(cmd *cobra.Command, spec ActivitySpec, description, date string) error {
	ctx := cmd.Context()
	input, err := spec.ToInput()
	if err != nil {
		return err
	}

	var when time.Time
	if date != "" {
		if when, err = time.Parse(persist.DateLayout, date); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
		}
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	result, err := eng.Submit(ctx, engine.SubmitRequest{Input: input, Description: description, Date: when})
	if err != nil {
		if errors.Is(err, engine.ErrNoPersistence) {
			return fmt.Errorf("%w: set persistence.url or %s", err, config.EnvPersistURL)
		}
		var apiErr *persist.APIError
		if errors.As(err, &apiErr) && apiErr.Temporary() {
			cmd.PrintErrln("The persistence service is temporarily unavailable; the activity was not stored.")
		}
		return err
	}

	if outputFormat() == config.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return renderSubmitResult(cmd.OutOrStdout(), result)
}

// NewActivityBatchCmd creates the "activity batch" command, which previews
// every activity in a YAML or JSON file.
func NewActivityBatchCmd() *cobra.Command {
	var (
		file       string
		failOnItem bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Preview a file of activities",
		Long: `Previews every activity in a YAML or JSON list. Each entry uses the same
fields as the preview flags (category, method, quantity, unit, region, ...).
A failing entry is reported on its row and does not stop the others.`,
		Example: `  carbonfocus activity batch --file activities.yaml
  carbonfocus activity batch --file activities.json --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runActivityBatch(cmd, file, failOnItem)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the activities file (required)")
	cmd.Flags().BoolVar(&failOnItem, "fail-on-error", false, "exit non-zero when any activity fails")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runActivityBatch(cmd *cobra.Command, file string, failOnItem bool) error {
	ctx := cmd.Context()
	specs, err := loadActivitySpecs(file)
	if err != nil {
		return err
	}

	// Entries that cannot even be converted are reported like failed previews.
	inputs := make([]emission.ActivityInput, 0, len(specs))
	positions := make([]int, 0, len(specs))
	invalid := map[int]error{}
	for i, s := range specs {
		in, convErr := s.ToInput()
		if convErr != nil {
			invalid[i] = convErr
			continue
		}
		inputs = append(inputs, in)
		positions = append(positions, i)
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	var progress batch.ProgressCallback
	if isTerminal(os.Stderr) {
		progress = func(s batch.Snapshot) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\rpreviewed %d/%d (%.0f%%)",
				s.ProcessedItems, s.TotalItems, s.PercentComplete)
			if s.ProcessedItems == s.TotalItems {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			}
		}
	}

	summary, err := eng.PreviewBatch(ctx, inputs, progress)
	if err != nil {
		return err
	}
	summary = mergeInvalid(summary, positions, invalid, len(specs))

	if outputFormat() == config.FormatJSON {
		err = writeJSON(cmd.OutOrStdout(), summary)
	} else {
		err = renderBatchSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		return err
	}
	if failOnItem && summary.Failed > 0 {
		return fmt.Errorf("%d of %d activities failed", summary.Failed, len(summary.Items))
	}
	return nil
}

// mergeInvalid re-indexes the previewed items to their file positions and
// adds the entries that failed conversion.
func mergeInvalid(s engine.BatchSummary, positions []int, invalid map[int]error, total int) engine.BatchSummary {
	if len(invalid) == 0 {
		return s
	}
	items := make([]engine.BatchItem, total)
	for i, item := range s.Items {
		item.Index = positions[i]
		items[positions[i]] = item
	}
	for pos, err := range invalid {
		items[pos] = engine.BatchItem{Index: pos, Error: err.Error()}
		s.Failed++
	}
	s.Items = items
	return s
}
