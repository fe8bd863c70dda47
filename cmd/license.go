package cmd

import (
	"fmt"
	"github.com/csnewman/droidmole/sdkfetch/cmd/app"
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/spf13/cobra"
	"sort"
)

var licenseCmd = &cobra.Command{
	Use:   "license [id]",
	Short: "Print a license from the repository manifest, or list license ids",
	Args:  cobra.MaximumNArgs(1),
	RunE:  executeLicense,
}

func executeLicense(cmd *cobra.Command, args []string) error {
	return app.Run(func(client *repository.Client) error {
		repo, err := client.GetManifest(cmd.Context())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			ids := make([]string, 0, len(repo.Licenses))
			for id := range repo.Licenses {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}

		text, ok := repo.Licenses[args[0]]
		if !ok {
			return fmt.Errorf("unknown license %q", args[0])
		}
		fmt.Println(text)
		return nil
	})
}
