// Package login installs and removes the per-user launch-at-login entry.
package login

import "errors"

var ErrUnsupported = errors.New("launch at login is not supported on this platform")

const appName = "dictate"

// State describes the current setting for `dictate login status`.
func State() string {
	if Enabled() {
		return "enabled"
	}
	return "disabled"
}
