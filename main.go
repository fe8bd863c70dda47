package main

import "github.com/csnewman/droidmole/sdkfetch/cmd"

func main() {
	cmd.Execute()
}
