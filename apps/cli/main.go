package main

import (
	"github.com/abdul-hamid-achik/xhrkit/apps/cli/cmd"
	"github.com/abdul-hamid-achik/xhrkit/packages/syncbridge"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// A synchronous request re-runs this binary as its worker.
	syncbridge.Init()
	cmd.Execute(version, buildTime)
}
