//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests in short mode.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Race runs every test with the race detector. The orchestrator and the
// store are concurrent, so this is the target CI uses.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}

// Golden regenerates the golden files of the wire-view tests.
func (Test) Golden() error {
	return sh.RunV(binGo, "test", "./pkg/types/...", "-update")
}
