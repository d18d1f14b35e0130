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
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/expand"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks <fixture.yaml>",
	Short: "Show which chunks a query would scan.",
	Long: "Loads a fixture file describing a hypertable, its chunks and a query,\n" +
		"runs chunk expansion and prints the resulting scan set in scan order.",
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	Root.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("parsing fixture: %w", err)
	}

	cat, root, ht, err := buildFixture(&fx)
	if err != nil {
		return err
	}

	rel := root.SimpleRelArray[1]
	rte := root.SimpleRTEArray[1]
	if !expand.ValidExpansionTarget(ht, root.Parse, rte) {
		return fmt.Errorf("relation cannot be expanded")
	}
	if err := expand.ExpandHypertableChunks(cat, root, ht, rel); err != nil {
		return err
	}

	chunkByRelID := make(map[catalog.RelOID]*catalog.Chunk)
	for _, ch := range cat.Chunks(ht.ID, catalog.NoLock) {
		chunkByRelID[ch.RelID] = ch
	}

	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Chunk", "Relation", "Ranges"})
	for _, appInfo := range root.AppendRelList {
		childRTE := root.SimpleRTEArray[appInfo.ChildRel]
		ch := chunkByRelID[childRTE.RelID]
		if ch == nil {
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", ch.ID),
			fmt.Sprintf("%d", ch.RelID),
			formatSlices(ht, ch),
		})
	}
	table.Render()

	ordered := rel.Private != nil && rel.Private.AppendsOrdered
	fmt.Fprintf(out, "chunks: %d of %d  ordered append: %v\n",
		len(root.AppendRelList), len(cat.Chunks(ht.ID, catalog.NoLock)), ordered)
	if rel.PartScheme != nil {
		fmt.Fprintf(out, "partitionwise aggregation: considered (%d partitioning attrs)\n",
			rel.PartScheme.PartAtts)
	}
	return nil
}

func formatSlices(ht *catalog.Hypertable, ch *catalog.Chunk) string {
	var parts []string
	for _, dim := range ht.Space.Dimensions {
		if s, ok := ch.SliceFor(dim.ID); ok {
			parts = append(parts, fmt.Sprintf("%s: [%d, %d)", dim.ColumnName, s.Start, s.End))
		}
	}
	return strings.Join(parts, " ")
}
