package cmd

import (
	"fmt"
	"github.com/csnewman/droidmole/sdkfetch/cmd/app"
	"github.com/csnewman/droidmole/sdkfetch/config"
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/spf13/cobra"
	"os"
	"strings"
	"text/tabwriter"
)

var listCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "List the components in the repository manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE:  executeList,
}

var listHostOnly bool

func init() {
	listCmd.Flags().BoolVar(&listHostOnly, "host", false, "Only show archives installable on the selected host")
}

func executeList(cmd *cobra.Command, args []string) error {
	kinds := repository.ComponentKinds
	if len(args) == 1 {
		kind, err := repository.ParseComponentKind(args[0])
		if err != nil {
			return err
		}
		kinds = []repository.ComponentKind{kind}
	}

	return app.Run(func(cfg config.Config, client *repository.Client) error {
		repo, err := client.GetManifest(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tVERSION\tLICENSE\tARCHIVES")

		for _, kind := range kinds {
			for _, c := range repo.Components(kind) {
				var archives []string
				for _, a := range c.Downloads() {
					if listHostOnly && !a.Matches(cfg.HostOS, cfg.HostBits) {
						continue
					}
					archives = append(archives, a.String())
				}
				if listHostOnly && len(archives) == 0 {
					continue
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Kind(), c.Version(), c.License(), strings.Join(archives, ", "))
			}
		}

		return w.Flush()
	})
}
