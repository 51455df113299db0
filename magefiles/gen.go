//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Gen mg.Namespace

// Regenerates every derived layout, codec and shader declaration.
func (Gen) Layouts() error {
	_, err := executeCmd("go", withArgs("generate", "./..."), withStream())
	return err
}

// Fails when a generated file is out of date.
func (Gen) Check() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/layoutgen", "-check", "./shared"), withStream())
	return err
}

// Compiles the shaders that include the generated GLSL.
func (Gen) Shaders() error {
	mg.Deps(Gen.Layouts)
	_, err := executeCmd("glslc",
		withArgs("--target-env=vulkan1.2", "-fshader-stage=frag", "material.frag.glsl", "-o", "material.frag.spv"),
		withDir("shared/shaders"), withStream())
	return err
}
