// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for blizztools.
//
// Version may be set at build time:
//
//	go build -ldflags "-X github.com/ohchase/blizztools/lib/version.Version=0.2.0"
//
// The commit and build time come from the VCS stamp the Go toolchain
// embeds in module builds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the semantic version, set manually for releases.
var Version = "0.1.0-dev"

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the running binary's build information. Commit is
// "unknown" outside a VCS-stamped build.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    "unknown",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return build
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			build.Commit = setting.Value
			if len(build.Commit) > 12 {
				build.Commit = build.Commit[:12]
			}
		case "vcs.modified":
			build.Dirty = setting.Value == "true"
		case "vcs.time":
			build.BuildTime = setting.Value
		}
	}
	return build
}

// Info returns a one-line version string: "0.1.0-dev (abc1234, 2026-...)".
func (b Build) Info() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	if b.BuildTime == "" {
		return fmt.Sprintf("%s (%s%s)", b.Version, b.Commit, dirty)
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Full is Info plus the Go version and platform.
func (b Build) Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", b.Info(), b.GoVersion, b.Platform)
}
