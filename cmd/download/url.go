package download

import (
	"github.com/csnewman/droidmole/sdkfetch/cmd/app"
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url <url> <checksum>",
	Short: "Download an archive by url and checksum",
	Args:  cobra.ExactArgs(2),
	RunE:  executeURL,
}

var urlOutput string

func init() {
	urlCmd.Flags().StringVar(&urlOutput, "output", "", "Destination directory")
	urlCmd.MarkFlagRequired("output")
}

func executeURL(cmd *cobra.Command, args []string) error {
	return app.Run(func(fetcher *repository.Fetcher) error {
		return fetcher.Fetch(cmd.Context(), args[0], args[1], urlOutput)
	})
}
