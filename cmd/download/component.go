package download

import (
	"fmt"
	"github.com/csnewman/droidmole/sdkfetch/cmd/app"
	"github.com/csnewman/droidmole/sdkfetch/config"
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newComponentCmd(kind repository.ComponentKind) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [version]", kind),
		Short: fmt.Sprintf("Download a %s, the newest unless a version is given", kind),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == 1 {
				version = args[0]
			}

			return app.Run(func(cfg config.Config, client *repository.Client, fetcher *repository.Fetcher, log *zap.SugaredLogger) error {
				repo, err := client.GetManifest(cmd.Context())
				if err != nil {
					return err
				}

				c, err := repository.FindComponent(repo, kind, version)
				if err != nil {
					return err
				}

				archive, err := repository.SelectArchive(c, cfg.HostOS, cfg.HostBits)
				if err != nil {
					return err
				}

				log.Infow("Selected",
					"kind", c.Kind(),
					"version", c.Version(),
					"license", c.License(),
					"archive", archive.URL,
				)

				if err := fetcher.FetchArchive(cmd.Context(), archive, output); err != nil {
					return err
				}

				log.Info("Complete")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Destination directory")
	cmd.MarkFlagRequired("output")

	return cmd
}
