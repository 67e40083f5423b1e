//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs the demo with tessera.toml.
func (Run) Demo() error {
	mg.Deps(Build.Demo)
	fmt.Println("Run demo...")
	_, err := executeCmd(demoBinary, withArgs("-config", "tessera.toml"), withStream())
	return err
}

// Runs a few demo frames on the headless backend.
func (Run) Headless() error {
	mg.Deps(Build.Demo)
	_, err := executeCmd(demoBinary, withArgs("-config", "magefiles/headless.toml", "-frames", "120"), withStream())
	return err
}
