//go:build mage

// Package main provides build targets for botsync using Mage.
//
// Usage:
//
//	mage build          Compile the botsync binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the race detector or goldens
//	mage test:race      Run all tests with the race detector
//	mage test:golden    Regenerate golden files
//	mage lint           Run golangci-lint
//	mage fmt            Fail when any file needs gofmt
//	mage clean          Remove build artifacts
//	mage install        Install botsync to GOPATH/bin
//	mage stats          Print Go line counts as JSON
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "botsync"
	binaryDir  = "bin"
	cmdDir     = "./cmd/botsync"
)

// Build compiles the botsync binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
