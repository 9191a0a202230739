package main

import (
	"fmt"
	"os"

	"github.com/blues/giftreg/internal/app"
	"github.com/blues/giftreg/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "giftctl",
		Short:         "Administer the wedding gift registry",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (defaults to ./config.yaml)")

	open := func() (*app.App, error) {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		return app.New(cfg)
	}

	rootCmd.AddCommand(seedCmd(open))
	rootCmd.AddCommand(giftsCmd(open))
	rootCmd.AddCommand(reconcileCmd(open))
	rootCmd.AddCommand(sweepCmd(open))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type opener func() (*app.App, error)
