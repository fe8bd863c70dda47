package download

import (
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "download",
	Short: "Download and unpack components",
}

func init() {
	for _, kind := range repository.ComponentKinds {
		Cmd.AddCommand(newComponentCmd(kind))
	}
	Cmd.AddCommand(urlCmd)
}
