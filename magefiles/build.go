//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Checks every GLSL stage under assets/shaders with glslangValidator.
func (Build) Shaders() error {
	return lintShaders()
}

// Builds the quad binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "quad"), "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests of every package.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// lintShaders validates every stage from inside the shader directory and
// reports all failing files together.
func lintShaders() error {
	dir := filepath.Join("assets", "shaders")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var failed []string
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".vert", ".frag":
		default:
			continue
		}
		if _, err := executeCmd("glslangValidator", withArgs(entry.Name()), withDir(dir)); err != nil {
			failed = append(failed, entry.Name())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("shaders failed validation: %s", strings.Join(failed, ", "))
	}
	return nil
}
