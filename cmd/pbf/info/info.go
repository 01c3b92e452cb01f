// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package info implements the "info" subcommand: print a PBF file's header,
// and optionally (--extended) walk every element via pbf.ParMapReduce to
// count nodes/ways/relations.
package info

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/osmx/pbf"
	"github.com/osmx/pbf/cmd/pbf/cli"
	"github.com/osmx/pbf/model"
)

var out io.Writer = os.Stdout

type extendedHeader struct {
	model.Header

	NodeCount     int64
	WayCount      int64
	RelationCount int64
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.Uint16P("cpu", "c", 0, "number of workers to use for scanning (0 = GOMAXPROCS)")
	flags.BoolP("extended", "e", false, "provide extended information (scans entire file)")
}

var infoCmd = &cobra.Command{
	Use:   "info [<OSM file>]",
	Short: "Print information about an OSM file",
	Long:  "Print information about an OSM file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var f *os.File

		var err error

		if len(args) == 1 {
			f, err = os.Open(args[0])
			if err != nil {
				log.Fatal(err)
			}
		} else {
			f = os.Stdin
		}

		in, err := cli.WrapInputFile(f)
		if err != nil {
			log.Fatal(err)
		}

		flags := cmd.Flags()

		ncpu, err := flags.GetUint16("cpu")
		if err != nil {
			log.Fatal(err)
		}

		extended, err := flags.GetBool("extended")
		if err != nil {
			log.Fatal(err)
		}

		info, err := runInfo(in, ncpu, extended)
		if err != nil {
			log.Fatal(err)
		}

		if err := in.Close(); err != nil {
			log.Fatal(err)
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			renderJSON(info, extended)
		} else {
			renderTxt(info, extended)
		}
	},
}

// runInfo opens in as a PBF source, reads its header, and -- when extended
// is set -- walks every element with pbf.ParMapReduce to tally counts by
// entity type.
func runInfo(in io.Reader, ncpu uint16, extended bool) (*extendedHeader, error) {
	var opts []pbf.Option
	if ncpu > 0 {
		opts = append(opts, pbf.WithWorkers(int(ncpu)))
	}

	r, err := pbf.NewReader(in, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening PBF source: %w", err)
	}

	info := &extendedHeader{Header: r.Header()}

	if !extended {
		return info, nil
	}

	type counts struct{ nodes, ways, relations int64 }

	mapFn := func(e model.Entity) (counts, error) {
		switch e.(type) {
		case model.Node:
			return counts{nodes: 1}, nil
		case model.Way:
			return counts{ways: 1}, nil
		case model.Relation:
			return counts{relations: 1}, nil
		default:
			return counts{}, fmt.Errorf("unknown entity type %T", e)
		}
	}

	combine := func(a, b counts) (counts, error) {
		return counts{
			nodes:     a.nodes + b.nodes,
			ways:      a.ways + b.ways,
			relations: a.relations + b.relations,
		}, nil
	}

	total, err := pbf.ParMapReduce(context.Background(), r, mapFn, counts{}, combine)
	if err != nil {
		return nil, fmt.Errorf("scanning elements: %w", err)
	}

	info.NodeCount = total.nodes
	info.WayCount = total.ways
	info.RelationCount = total.relations

	return info, nil
}

func renderJSON(info *extendedHeader, extended bool) {
	var v interface{}
	if extended {
		v = info
	} else {
		v = info.Header
	}

	b, err := json.Marshal(v)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprint(out, string(b))
}

func renderTxt(info *extendedHeader, extended bool) {
	bbox := "<none>"
	if info.BoundingBox != nil {
		bbox = info.BoundingBox.String()
	}

	fmt.Fprintf(out, "BoundingBox: %s\n", bbox)
	fmt.Fprintf(out, "RequiredFeatures: %s\n", strings.Join(info.RequiredFeatures, ", "))
	fmt.Fprintf(out, "OptionalFeatures: %v\n", strings.Join(info.OptionalFeatures, ", "))
	fmt.Fprintf(out, "WritingProgram: %s\n", info.WritingProgram)
	fmt.Fprintf(out, "Source: %s\n", info.Source)
	fmt.Fprintf(out, "OsmosisReplicationTimestamp: %s\n", info.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "OsmosisReplicationSequenceNumber: %d\n", info.OsmosisReplicationSequenceNumber)
	fmt.Fprintf(out, "OsmosisReplicationBaseURL: %s\n", info.OsmosisReplicationBaseURL)

	if extended {
		fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Fprintf(out, "WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(info.RelationCount))
	}
}
