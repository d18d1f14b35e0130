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

// Package log is a thin adapter around glog so the rest of the codebase
// does not import it directly. Keeping the indirection in one place lets
// us swap the backend without touching call sites.
package log

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/pflag"
)

var (
	// Flush ensures any pending log I/O is written.
	Flush = glog.Flush

	// V quickly checks a verbosity level; use as log.V(2).Info(...).
	V = glog.V

	// Info formats arguments like fmt.Print.
	Info = glog.Info
	// Infof formats arguments like fmt.Printf.
	Infof = glog.Infof

	// Warning formats arguments like fmt.Print.
	Warning = glog.Warning
	// Warningf formats arguments like fmt.Printf.
	Warningf = glog.Warningf

	// Error formats arguments like fmt.Print.
	Error = glog.Error
	// Errorf formats arguments like fmt.Printf.
	Errorf = glog.Errorf

	// Exitf logs at error level and exits with a nonzero status.
	Exitf = glog.Exitf

	// Fatalf logs at fatal level with a stack trace and exits.
	Fatalf = glog.Fatalf
)

// RegisterFlags installs the glog flags on the given pflag FlagSet so
// commands built on pflag/cobra keep the standard -v / --logtostderr
// behavior. glog registers its flags on flag.CommandLine in its own init.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.AddGoFlagSet(flag.CommandLine)
}
