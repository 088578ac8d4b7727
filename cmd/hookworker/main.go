package main

import (
	"github.com/joeydtaylor/steeze-hooks/pkg/workerfx"
	"go.uber.org/fx"

	// Must match the gateway's plugin set so task names resolve.
	_ "github.com/joeydtaylor/steeze-hooks/plugins/nbintegrate"
)

func main() {
	fx.New(
		workerfx.Module(
			workerfx.WithService("hookworker"),
			workerfx.WithManifestEnv("HOOKS_MANIFEST"),
		),
	).Run()
}
