package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/dictionary"
)

func newValidateCmd() *cobra.Command {
	var dict string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the program dictionary and config without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}

			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			_, res := config.NormalizeAndValidate(cfg)
			for _, w := range res.Warnings {
				fmt.Println("config warning:", w)
			}

			d, err := dictionary.Load(dict)
			if err != nil {
				return fmt.Errorf("dictionary: %w", err)
			}
			fmt.Printf("ok: %d programs, config valid\n", d.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dict, "dictionary", "d", "config/programs.json", "program dictionary JSON")
	return cmd
}
