// Package render draws annotations onto an image for visual QA.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/franklin-ai/darwin-v7/pkg/export"
)

// DefaultStroke is the outline color used when none is given.
var DefaultStroke = color.RGBA{R: 0xff, G: 0x2d, B: 0x55, A: 0xff}

// Overlay copies the image and draws every annotation's bounding box
// and polygon paths onto it.
func Overlay(img image.Image, annotations []export.ImageAnnotation) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)

	gc := draw2dimg.NewGraphicContext(out)
	gc.SetStrokeColor(DefaultStroke)
	gc.SetLineWidth(2)

	for i := range annotations {
		a := &annotations[i]
		if box := a.BoundingBox; box != nil {
			gc.MoveTo(float64(box.X), float64(box.Y))
			gc.LineTo(float64(box.X+box.W), float64(box.Y))
			gc.LineTo(float64(box.X+box.W), float64(box.Y+box.H))
			gc.LineTo(float64(box.X), float64(box.Y+box.H))
			gc.Close()
			gc.Stroke()
		}
		if a.Polygon == nil {
			continue
		}
		for _, path := range a.Polygon.Paths {
			if len(path) == 0 {
				continue
			}
			gc.MoveTo(float64(path[0].X), float64(path[0].Y))
			for _, point := range path[1:] {
				gc.LineTo(float64(point.X), float64(point.Y))
			}
			gc.Close()
			gc.Stroke()
		}
	}
	return out
}
