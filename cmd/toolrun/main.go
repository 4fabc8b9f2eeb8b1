package main

import (
	"github.com/Paintersrp/toolrun/internal/cli"
	"github.com/Paintersrp/toolrun/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
