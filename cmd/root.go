package cmd

import (
	"context"
	"fmt"
	"github.com/csnewman/droidmole/sdkfetch/cmd/app"
	"github.com/csnewman/droidmole/sdkfetch/cmd/download"
	"github.com/spf13/cobra"
	"os"
)

var rootCmd = &cobra.Command{
	Use:           "sdkfetch",
	Short:         "Fetch and install Android SDK components",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	app.Opts.Register(rootCmd.PersistentFlags())
	rootCmd.AddCommand(download.Cmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(licenseCmd)
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
