package main

import (
	"github.com/joeydtaylor/steeze-hooks/pkg/serverfx"
	"go.uber.org/fx"

	// Plugins register themselves with the default catalog.
	_ "github.com/joeydtaylor/steeze-hooks/plugins/nbintegrate"
)

func main() {
	fx.New(
		serverfx.Module(
			serverfx.WithService("hookgate"),
			serverfx.WithManifestEnv("HOOKS_MANIFEST"),
			serverfx.WithDefaultManifest("manifest.toml"),
		),
	).Run()
}
