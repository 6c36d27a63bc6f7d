// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// AppBuildInfo is the build metadata injected with -ldflags.
type AppBuildInfo struct {
	Version string
	Date    string
	Commit  string
}

func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{Version: version, Date: date, Commit: commit}
}

// String renders all fields on one line, replacing empty values with "N/A".
func (a AppBuildInfo) String() string {
	return fmt.Sprintf("version=%s date=%s commit=%s", orNA(a.Version), orNA(a.Date), orNA(a.Commit))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// AppInfo is the body of GET /api/version.
type AppInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Storage   string `json:"storage"`
}
