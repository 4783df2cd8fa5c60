// Package darwinv7 is a client library for the V7 Darwin image and
// video annotation platform.
//
// The library is organized around the platform's REST API and its two
// export schema generations:
//
// 1. Client (pkg/client): authenticated JSON transport and response decoding
// 2. Annotation (pkg/annotation): geometry primitives, annotation kinds and classes
// 3. Item (pkg/item): dataset items, slots and the tiled-image Levels codec
// 4. Export / Imports (pkg/export, pkg/imports): the v1/v2 export schema and
// the import payloads round-tripped from it
// 5. Dataset / Team / Workflow (pkg/dataset, pkg/team, pkg/workflow): the
// REST operations around them
// 6. Tiling (pkg/tiling): pyramid computation and tile cutting for externally
// stored tiled images
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		darwinv7 "github.com/franklin-ai/darwin-v7"
//		"github.com/franklin-ai/darwin-v7/pkg/dataset"
//	)
//
//	func main() {
//		c, err := darwinv7.NewClientFromConfig("darwin.yaml", "")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		datasets, err := dataset.List(context.Background(), c)
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, d := range datasets {
//			fmt.Println(d)
//		}
//	}
package darwinv7

import (
	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/config"
)

// Version is the library version.
const Version = "0.2.0"

// NewClientFromConfig loads a Darwin config file and builds a client
// for the named team. An empty slug selects the config's default team.
func NewClientFromConfig(path, team string, opts ...client.Option) (*client.Client, error) {
	cfg, err := config.FromFile(path)
	if err != nil {
		return nil, err
	}
	return client.FromConfig(cfg, team, opts...)
}
