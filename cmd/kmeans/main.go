// Copyright 2025 The caselens Authors
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

// Command kmeans clusters refined case records and prints the report as
// JSON on stdout. Failures are printed as a JSON error object with a
// non-zero exit code, so callers can always parse the output.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/caselens/caselens/cluster"
)

func main() {
	app := &cli.App{
		Name:  "kmeans",
		Usage: "K-means clustering over refined medical case features",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the refined cases JSON file",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "clusters",
				Aliases: []string{"k"},
				Usage:   "Number of clusters",
				Value:   3,
			},
			&cli.StringSliceFlag{
				Name:  "features",
				Usage: "Feature columns to cluster on",
				Value: cli.NewStringSlice(cluster.DefaultFeatures...),
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed for reproducible runs",
				Value: 42,
			},
		},
		Action: runCommand,
	}

	if err := app.Run(os.Args); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func runCommand(c *cli.Context) error {
	report, err := cluster.Run(cluster.Params{
		DataPath:    c.String("data"),
		NumClusters: c.Int("clusters"),
		Features:    c.StringSlice("features"),
		Seed:        c.Int64("seed"),
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// printError emits the failure as JSON so the output stays machine
// readable either way.
func printError(err error) {
	payload, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(payload))
}
