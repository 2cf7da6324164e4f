package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fundmatch/internal/matcher"
	"github.com/sells-group/fundmatch/internal/model"
)

var (
	batchFile        string
	batchConcurrency int
	batchOffline     bool
	batchDataset     string
	batchOutput      string
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Match a CSV of company URLs against the fund catalog",
	Long:  "Reads a CSV with one company per line (url, optional context) and writes one JSON result per line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := matcher.ValidateConfig(cfg.Match); err != nil {
			return err
		}

		targets, err := readBatchFile(batchFile)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			zap.L().Info("no companies in batch file")
			return nil
		}

		datasetPath := batchDataset
		if datasetPath == "" {
			datasetPath = cfg.Dataset.Path
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		funds, err := loadFunds(ctx, st, datasetPath)
		if err != nil {
			return err
		}

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "create output file %s", batchOutput)
			}
			defer f.Close()
			out = f
		}

		p := newPipeline(batchOffline, funds)

		zap.L().Info("processing batch",
			zap.Int("companies", len(targets)),
			zap.Int("concurrency", batchConcurrency))

		results := make([]*model.MatchResult, len(targets))
		var succeeded, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)

		for i, target := range targets {
			g.Go(func() error {
				log := zap.L().With(zap.String("company", target.url))

				var run *matchRunHandle
				if batchSave {
					var err error
					run, err = beginRun(gctx, st, target.url)
					if err != nil {
						log.Error("create run failed", zap.Error(err))
					}
				}

				result, err := p.match(gctx, target.url, target.context, "", cfg.Match.TopK)
				if err != nil {
					failed.Add(1)
					run.fail(gctx, err)
					log.Error("match failed", zap.Error(err))
					return nil // don't abort the batch on individual failure
				}

				succeeded.Add(1)
				run.complete(gctx, result)
				results[i] = result
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}

		enc := json.NewEncoder(out)
		for _, result := range results {
			if result == nil {
				continue
			}
			if err := enc.Encode(result); err != nil {
				return eris.Wrap(err, "encode batch result")
			}
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()))
		return nil
	},
}

type batchTarget struct {
	url     string
	context string
}

// readBatchFile parses a CSV of companies. Column one is the URL, column
// two an optional context string. A "url" header row is skipped.
func readBatchFile(path string) ([]batchTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var targets []batchTarget
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read batch file %s", path)
		}
		if len(record) == 0 {
			continue
		}
		url := strings.TrimSpace(record[0])
		if url == "" || strings.EqualFold(url, "url") {
			continue
		}
		target := batchTarget{url: url}
		if len(record) > 1 {
			target.context = strings.TrimSpace(record[1])
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "input", "", "CSV file of companies (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "max companies processed at once")
	batchCmd.Flags().BoolVar(&batchOffline, "offline", false, "use heuristic extraction, no API calls")
	batchCmd.Flags().StringVar(&batchDataset, "dataset", "", "fund catalog file (default from config, or the store)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write JSONL results to file instead of stdout")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "record each run in the store")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
