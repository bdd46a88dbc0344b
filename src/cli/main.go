package main

import (
	"os"

	"github.com/sofmeright/idebuild/src/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
