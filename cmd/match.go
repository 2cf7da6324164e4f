package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundmatch/internal/matcher"
	"github.com/sells-group/fundmatch/internal/store"
)

var (
	matchURL      string
	matchContext  string
	matchDealType string
	matchTopK     int
	matchOffline  bool
	matchFormat   string
	matchOutput   string
	matchDataset  string
	matchSave     bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a company website against the fund catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := matcher.ValidateConfig(cfg.Match); err != nil {
			return err
		}

		datasetPath := matchDataset
		if datasetPath == "" {
			datasetPath = cfg.Dataset.Path
		}

		var st store.Store
		if matchSave || datasetPath == "" {
			var err error
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		funds, err := loadFunds(ctx, st, datasetPath)
		if err != nil {
			return err
		}

		topK := matchTopK
		if topK == 0 {
			topK = cfg.Match.TopK
		}

		var run *matchRunHandle
		if matchSave {
			run, err = beginRun(ctx, st, matchURL)
			if err != nil {
				return err
			}
		}

		p := newPipeline(matchOffline, funds)

		result, err := p.match(ctx, matchURL, matchContext, matchDealType, topK)
		if err != nil {
			run.fail(ctx, err)
			return eris.Wrapf(err, "match %s", matchURL)
		}
		run.complete(ctx, result)

		zap.L().Info("match complete",
			zap.String("company", result.Profile.Name),
			zap.Int("shortlist", len(result.Shortlist)))

		return writeOutput(result, matchFormat, matchOutput)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchURL, "url", "", "company website URL (required)")
	matchCmd.Flags().StringVar(&matchContext, "context", "", "free-text clarifications (size, regions, deal preferences)")
	matchCmd.Flags().StringVar(&matchDealType, "deal-type", "", "requested deal type, overrides context hints")
	matchCmd.Flags().IntVar(&matchTopK, "k", 0, "shortlist size (default from config)")
	matchCmd.Flags().BoolVar(&matchOffline, "offline", false, "use heuristic extraction, no API calls")
	matchCmd.Flags().StringVar(&matchFormat, "format", "json", "output format: json or table")
	matchCmd.Flags().StringVar(&matchOutput, "output", "", "write result to file instead of stdout")
	matchCmd.Flags().StringVar(&matchDataset, "dataset", "", "fund catalog file (default from config, or the store)")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "record the run in the store")
	_ = matchCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(matchCmd)
}
