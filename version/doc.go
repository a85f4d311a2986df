// Package version reports the build version of bg.
//
// Release builds set the variables via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/bg/version.Version=v1.0.0" ./cmd/bg
//
// Otherwise the module version recorded by `go install` and the VCS
// stamps of the build are used.
package version
