package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bdintel-engine/internal/pipeline"
)

func newMapCmd() *cobra.Command {
	var (
		input  string
		output string
		dict   string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "One-shot: map a normalized jobs file to programs and org trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			d, err := loadDictionary(dict, log)
			if err != nil {
				return err
			}

			runner := pipeline.Runner{
				Engine:  pipeline.Engine{Cfg: cfg, Dict: d, Log: log},
				DataDir: dir,
				OutDir:  output,
			}
			res, err := runner.AnalyzeFile(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Printf("run %s: %d mapped, %d unresolved, %d unmatched (%d records skipped)\n",
				res.RunID, res.Mapped, res.Unresolved, res.Unmatched, res.Report.Skipped)
			fmt.Printf("exports written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "normalized jobs JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "export directory")
	cmd.Flags().StringVarP(&dict, "dictionary", "d", "config/programs.json", "program dictionary JSON")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
