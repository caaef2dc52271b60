// SPDX-License-Identifier: MPL-2.0

package config

import "sync/atomic"

// configDirOverride, when set, replaces the platform config directory.
// os.UserHomeDir ignores HOME on some platforms, so tests redirect the
// lookup here instead.
var configDirOverride atomic.Pointer[string]

// SetConfigDirOverride makes ConfigDir return dir until restore is called.
//
//	t.Cleanup(config.SetConfigDirOverride(t.TempDir()))
func SetConfigDirOverride(dir string) (restore func()) {
	prev := configDirOverride.Swap(&dir)
	return func() { configDirOverride.Store(prev) }
}

// overriddenConfigDir returns the override, or "" when none is set.
func overriddenConfigDir() string {
	if dir := configDirOverride.Load(); dir != nil {
		return *dir
	}
	return ""
}
