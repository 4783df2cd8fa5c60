package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/franklin-ai/darwin-v7/internal/logging"
	"github.com/franklin-ai/darwin-v7/pkg/client"
	"github.com/franklin-ai/darwin-v7/pkg/config"
	"github.com/franklin-ai/darwin-v7/pkg/dataset"
	"github.com/franklin-ai/darwin-v7/pkg/export"
	"github.com/franklin-ai/darwin-v7/pkg/imports"
	"github.com/franklin-ai/darwin-v7/pkg/team"
	"github.com/franklin-ai/darwin-v7/pkg/tiling"

	"github.com/disintegration/imaging"
)

var (
	rootCmd = &cobra.Command{
		Use:   "darwin-v7",
		Short: "Client for the V7 Darwin annotation platform",
	}
	configPath string
	teamSlug   string
	logMode    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "darwin.yaml", "Path to the Darwin config file")
	rootCmd.PersistentFlags().StringVarP(&teamSlug, "team", "t", "", "Team slug (defaults to the config's default team)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log", "development", "Log mode: development or production")

	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(tileCmd)
	rootCmd.AddCommand(importCmd)
}

func newClient() (*client.Client, *config.Config, error) {
	cfg, err := config.FromFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logMode)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.FromConfig(cfg, teamSlug, client.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the team members visible to the API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newClient()
		if err != nil {
			return err
		}
		members, err := team.ListMemberships(context.Background(), c)
		if err != nil {
			return err
		}
		for _, m := range members {
			fmt.Println(m)
		}
		return nil
	},
}

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the team's annotation classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newClient()
		if err != nil {
			return err
		}
		t := team.Team{Slug: c.Team()}
		classes, err := t.ListAnnotationClasses(context.Background(), c)
		if err != nil {
			return err
		}
		for _, class := range classes.AnnotationClasses {
			name, id := "", uint32(0)
			if class.Name != nil {
				name = *class.Name
			}
			if class.ID != nil {
				id = *class.ID
			}
			fmt.Printf("%d\t%s\n", id, name)
		}
		return nil
	},
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newClient()
		if err != nil {
			return err
		}
		datasets, err := dataset.List(context.Background(), c)
		if err != nil {
			return err
		}
		for _, d := range datasets {
			fmt.Println(d)
		}
		return nil
	},
}

var (
	tileSize   uint32
	tileFormat string
	tileOut    string
)

var tileCmd = &cobra.Command{
	Use:   "tile <image>",
	Short: "Cut an image into a tiled pyramid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(logMode)
		if err != nil {
			return err
		}
		img, err := imaging.Open(args[0])
		if err != nil {
			return err
		}

		tiler := tiling.NewTiler(tileSize, tileFormat, logger)
		tiles, levels, err := tiler.Cut(img, tileOut)
		if err != nil {
			return err
		}
		logger.Info("image tiled",
			zap.Int("tiles", len(tiles)),
			zap.Int("levels", len(levels.ImageLevels)),
		)

		metadata, err := json.Marshal(levels)
		if err != nil {
			return err
		}
		fmt.Println(string(metadata))
		return nil
	},
}

func init() {
	tileCmd.Flags().Uint32Var(&tileSize, "tile-size", 2048, "Tile edge length in pixels")
	tileCmd.Flags().StringVar(&tileFormat, "format", "png", "Tile format: png, jpg or webp")
	tileCmd.Flags().StringVarP(&tileOut, "out", "o", "tiles", "Output directory")
}

var (
	importItemID    string
	importDatasetID uint32
	importOverwrite bool
)

var importCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Import a v1 export file's annotations onto a dataset item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newClient()
		if err != nil {
			return err
		}
		ctx := context.Background()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var exported export.Export
		if err := json.Unmarshal(data, &exported); err != nil {
			return fmt.Errorf("failed to decode export file: %w", err)
		}

		d, err := dataset.Show(ctx, c, importDatasetID)
		if err != nil {
			return err
		}
		if d.TeamSlug == nil {
			slug := c.Team()
			d.TeamSlug = &slug
		}
		t := team.Team{Slug: c.Team()}
		registry, err := t.ListAnnotationClasses(ctx, c)
		if err != nil {
			return err
		}

		payload := imports.Import{Overwrite: importOverwrite}
		for i := range exported.Annotations {
			a := &exported.Annotations[i]
			slotName := "0"
			if len(a.SlotNames) > 0 {
				slotName = a.SlotNames[0]
			}
			switch {
			case a.Polygon != nil:
				for _, path := range a.Polygon.Paths {
					converted, err := imports.NewPolygonAnnotation(a, path, registry.AnnotationClasses, slotName)
					if err != nil {
						return err
					}
					payload.Annotations = append(payload.Annotations, *converted)
				}
			case a.Tag != nil:
				converted, err := imports.NewTagAnnotation(a, registry.AnnotationClasses, slotName)
				if err != nil {
					return err
				}
				payload.Annotations = append(payload.Annotations, *converted)
			}
		}

		if err := d.ImportAnnotations(ctx, c, importItemID, &payload); err != nil {
			return err
		}
		fmt.Printf("imported %d annotations onto %s\n", len(payload.Annotations), importItemID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importItemID, "item", "", "Target dataset item id")
	importCmd.Flags().Uint32Var(&importDatasetID, "dataset", 0, "Dataset id")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace the item's existing annotations")
	_ = importCmd.MarkFlagRequired("item")
	_ = importCmd.MarkFlagRequired("dataset")
}
