//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests of the packages that need no window or audio device.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1",
		"./engine/core/...",
		"./engine/containers/...",
		"./engine/config/...",
		"./engine/math/...",
		"./engine/audio",
		"./engine/assets/...",
		"./engine/renderer/headless/...",
		"./engine/renderer/geometry/...",
		"./engine/renderer/surface/...",
		"./engine/renderer/metadata/...",
		"./engine/renderer/vulkan/...",
		"./engine",
		"./testbed/...",
	), withStream())
	return err
}

// Runs every test, including those that link OpenGL.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-count=1", "./..."), withStream())
	return err
}
