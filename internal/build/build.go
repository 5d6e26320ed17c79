// Package build holds values stamped in at link time
package build

// Version can be set at build time with
// -ldflags "-X github.com/drummonds/rotatepdf/internal/build.Version=v1.2.3"
var Version = "dev"
