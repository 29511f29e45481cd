package cmd

import (
	"fmt"
	"os"

	"github.com/ostafen/jrecover/internal/config"
	"github.com/ostafen/jrecover/internal/env"
	"github.com/spf13/cobra"
)

func Execute() error {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - recover JPEG images from raw disk images",
	}

	rootCmd.AddCommand(
		DefineScanCommand(cfg),
		DefineRecoverCommand(),
		DefineMountCommand(),
		DefineMergeCommand(),
	)
	return rootCmd.Execute()
}
