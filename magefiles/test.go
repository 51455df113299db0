//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests without the GPU-backed heap tests.
func (Test) Short() error {
	_, err := executeCmd("go", withArgs("test", "-short", "-tags", "nogpu", "./..."), withStream())
	return err
}

// Runs every test with the race detector.
func (Test) All() error {
	mg.Deps(Gen.Check)
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Dumps the sample scene.
func (Test) Scene() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/scenedump", "-hex", "cmd/scenedump/testdata/triangle.yaml"), withStream())
	return err
}
