// Package tiling builds tiled-image pyramids for externally stored
// images: the level metadata the platform expects, plus the tile files
// themselves.
package tiling

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/franklin-ai/darwin-v7/pkg/item"

	// Registers webp decoding for source images.
	_ "golang.org/x/image/webp"
)

// ComputeLevels derives the pyramid metadata for an image of the given
// pixel dimensions. Level 0 is full resolution; each following level
// doubles the pixel ratio until the whole image fits in a single tile.
func ComputeLevels(width, height, tileSize uint32, format string) item.Levels {
	levels := make(map[uint32]item.ImageLevel)
	for index := uint32(0); ; index++ {
		ratio := uint32(1) << index
		xTiles := tilesAcross(width, ratio, tileSize)
		yTiles := tilesAcross(height, ratio, tileSize)
		levels[index] = item.ImageLevel{
			Format:     format,
			PixelRatio: uint16(ratio),
			TileHeight: tileSize,
			TileWidth:  tileSize,
			XTiles:     float32(xTiles),
			YTiles:     float32(yTiles),
		}
		if xTiles <= 1 && yTiles <= 1 {
			break
		}
	}
	return item.Levels{ImageLevels: levels}
}

func tilesAcross(pixels, ratio, tileSize uint32) uint32 {
	scaled := (pixels + ratio - 1) / ratio
	return (scaled + tileSize - 1) / tileSize
}

// Tiler cuts images into pyramid tiles on disk.
type Tiler struct {
	TileSize uint32
	// Format is the tile file format: "png", "jpg" or "webp".
	Format string
	logger *zap.Logger
}

// NewTiler returns a Tiler with the given tile size and format.
func NewTiler(tileSize uint32, format string, logger *zap.Logger) *Tiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiler{TileSize: tileSize, Format: format, logger: logger}
}

// Tile is one tile file written by Cut.
type Tile struct {
	Level uint32
	X     uint32
	Y     uint32
	Path  string
}

// Cut slices the image into pyramid tiles under outDir, one
// subdirectory per level, files named x_y.<format>. It returns the
// written tiles and the matching level metadata.
func (t *Tiler) Cut(img image.Image, outDir string) ([]Tile, item.Levels, error) {
	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	if width == 0 || height == 0 {
		return nil, item.Levels{}, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	levels := ComputeLevels(width, height, t.TileSize, t.Format)
	var tiles []Tile
	for index := uint32(0); index < uint32(len(levels.ImageLevels)); index++ {
		level := levels.ImageLevels[index]
		ratio := uint32(level.PixelRatio)

		scaled := img
		if ratio > 1 {
			scaled = imaging.Resize(img, int((width+ratio-1)/ratio), 0, imaging.Lanczos)
		}

		levelDir := filepath.Join(outDir, fmt.Sprintf("%d", index))
		if err := os.MkdirAll(levelDir, 0o755); err != nil {
			return nil, item.Levels{}, fmt.Errorf("failed to create level dir: %w", err)
		}

		written, err := t.cutLevel(scaled, index, level, levelDir)
		if err != nil {
			return nil, item.Levels{}, err
		}
		tiles = append(tiles, written...)

		t.logger.Debug("level cut",
			zap.Uint32("level", index),
			zap.Uint32("pixel_ratio", ratio),
			zap.Int("tiles", len(written)),
		)
	}
	return tiles, levels, nil
}

func (t *Tiler) cutLevel(scaled image.Image, index uint32, level item.ImageLevel, levelDir string) ([]Tile, error) {
	size := int(t.TileSize)
	bounds := scaled.Bounds()

	var tiles []Tile
	for y := uint32(0); y < uint32(level.YTiles); y++ {
		for x := uint32(0); x < uint32(level.XTiles); x++ {
			rect := image.Rect(
				bounds.Min.X+int(x)*size,
				bounds.Min.Y+int(y)*size,
				min(bounds.Min.X+int(x+1)*size, bounds.Max.X),
				min(bounds.Min.Y+int(y+1)*size, bounds.Max.Y),
			)
			tile := imaging.Crop(scaled, rect)

			path := filepath.Join(levelDir, fmt.Sprintf("%d_%d.%s", x, y, t.Format))
			if err := t.save(tile, path); err != nil {
				return nil, fmt.Errorf("tile %d/%d_%d: %w", index, x, y, err)
			}
			tiles = append(tiles, Tile{Level: index, X: x, Y: y, Path: path})
		}
	}
	return tiles, nil
}

func (t *Tiler) save(tile *image.NRGBA, path string) error {
	if t.Format == "webp" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, tile, &webp.Options{Lossless: true})
	}
	return imaging.Save(tile, path)
}

// RegistrationPayload describes an already tiled, externally stored
// image for the legacy data endpoint. The key prefix is where the tile
// objects live in external storage.
func RegistrationPayload(filename, path, keyPrefix, thumbnailKey string, width, height uint32, levels item.Levels) item.AddDataPayload {
	return item.AddDataPayload{
		Type:         item.TypeTiledImage,
		Filename:     filename,
		ThumbnailKey: thumbnailKey,
		Path:         path,
		Key:          keyPrefix,
		Width:        width,
		Height:       height,
		Metadata: item.DataPayloadLevel{
			Levels:  levels.ImageLevels,
			BaseKey: keyPrefix,
		},
	}
}
