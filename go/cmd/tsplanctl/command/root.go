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

package command

import (
	"github.com/spf13/cobra"

	"github.com/tong0711/timescaledb/go/ts/log"
	"github.com/tong0711/timescaledb/go/ts/planenv"
)

// Root is the tsplanctl command tree.
var Root = &cobra.Command{
	Use:   "tsplanctl",
	Short: "tsplanctl inspects hypertable planning decisions offline.",
	Long: "`tsplanctl` loads a hypertable layout and a query description from a fixture file\n" +
		"and reports the planning decisions the extension would make for it:\n" +
		"which chunks are scanned, in what order, and whether partitionwise aggregation is possible.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	log.RegisterFlags(Root.PersistentFlags())
	planenv.RegisterFlags(Root.PersistentFlags())
}
