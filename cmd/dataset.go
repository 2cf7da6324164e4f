package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundmatch/internal/dataset"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage the fund catalog",
}

var datasetImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a fund catalog file (JSON, YAML, or XLSX) into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		funds, err := dataset.Load(args[0])
		if err != nil {
			return eris.Wrapf(err, "load dataset %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.UpsertFunds(ctx, funds)
		if err != nil {
			return eris.Wrap(err, "import funds")
		}

		zap.L().Info("dataset imported",
			zap.String("file", args[0]),
			zap.Int("funds", n))
		fmt.Printf("imported %d funds from %s\n", n, args[0])
		return nil
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List funds in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		funds, err := st.ListFunds(ctx)
		if err != nil {
			return eris.Wrap(err, "list funds")
		}

		for _, f := range funds {
			fmt.Printf("%s\t%s\t%s\n", f.Name, strings.Join(f.Industries, ", "), strings.Join(f.DealTypes, ", "))
		}
		fmt.Printf("%d funds\n", len(funds))
		return nil
	},
}

func init() {
	datasetCmd.AddCommand(datasetImportCmd)
	datasetCmd.AddCommand(datasetListCmd)
	rootCmd.AddCommand(datasetCmd)
}
