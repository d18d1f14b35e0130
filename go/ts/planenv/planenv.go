/*
Copyright 2025 The Timescale Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package planenv holds the global planner toggles. Flags are registered
// on a pflag FlagSet and bound to viper keys so the same settings can come
// from the command line, a config file, or the environment.
package planenv

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// KeyDisableOptimizations disables every planner optimization this
	// extension performs, including chunk exclusion and ordered append.
	KeyDisableOptimizations = "planner.disable_optimizations"

	// KeyEnableOrderedAppend controls whether chunk expansion may emit
	// chunks in sort order to satisfy an ORDER BY ... LIMIT without a
	// separate sort step.
	KeyEnableOrderedAppend = "planner.enable_ordered_append"
)

func init() {
	viper.SetDefault(KeyDisableOptimizations, false)
	viper.SetDefault(KeyEnableOrderedAppend, true)
}

// RegisterFlags installs the planner toggles on fs and binds them to
// their viper keys. Call before flag parsing.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool("planner-disable-optimizations", false, "Disable all query planner optimizations.")
	fs.Bool("planner-enable-ordered-append", true, "Enable ordered append scans over chunks.")

	viper.BindPFlag(KeyDisableOptimizations, fs.Lookup("planner-disable-optimizations"))
	viper.BindPFlag(KeyEnableOrderedAppend, fs.Lookup("planner-enable-ordered-append"))
}

// OptimizationsDisabled reports whether all planner optimizations are
// turned off.
func OptimizationsDisabled() bool {
	return viper.GetBool(KeyDisableOptimizations)
}

// OrderedAppendEnabled reports whether ordered append may be used.
func OrderedAppendEnabled() bool {
	return viper.GetBool(KeyEnableOrderedAppend)
}
