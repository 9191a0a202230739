package main

import (
	"fmt"
	"os"

	"github.com/blues/giftreg/internal/logic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile gifts.yaml 格式
type seedFile struct {
	Gifts []logic.SeedGift `yaml:"gifts"`
}

func loadSeedFile(path string) ([]logic.SeedGift, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(f.Gifts) == 0 {
		return nil, fmt.Errorf("seed file %s has no gifts", path)
	}
	return f.Gifts, nil
}

func seedCmd(open opener) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update gifts from a YAML catalog",
		Long: `Upsert gifts by name from a YAML file:

  gifts:
    - name: Jogo de panelas
      description: Panelas antiaderentes
      target_amount: "500.00"
      image_url: /static/images/panelas.jpg

Raised amounts are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := loadSeedFile(file)
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			added, updated, err := a.Gifts.Seed(cmd.Context(), seeds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d gifts (%d added, %d updated)\n", added+updated, added, updated)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "gifts.yaml", "Seed catalog")
	return cmd
}
