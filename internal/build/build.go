// Package build holds version information stamped at build time.
package build

// Version is overridden by the linker for release builds:
//
//	go build -ldflags "-X github.com/drummonds/chartconv/internal/build.Version=v1.2.3"
var Version = "dev"
