// Package bignum renders numbers as large block art using half-block characters.
package bignum

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// reference fixes the vertical extent so every number is drawn at the same scale.
const reference = "0123456789.-+e"

const (
	fontSize  = 48
	padding   = 2
	threshold = 40
)

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
	refBound fixed.Rectangle26_6
)

func loadFace() (font.Face, error) {
	faceOnce.Do(func() {
		fnt, err := opentype.Parse(gomono.TTF)
		if err != nil {
			faceErr = fmt.Errorf("parsing go mono: %w", err)
			return
		}
		face, faceErr = opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if faceErr == nil {
			refBound, _ = font.BoundString(face, reference)
		}
	})
	return face, faceErr
}

// Available reports whether the embedded font could be loaded.
func Available() bool {
	_, err := loadFace()
	return err == nil
}

// Render draws text as half-block art rows cells tall. The width follows
// from the glyphs' aspect ratio, a terminal cell being one pixel wide and
// two pixels tall.
func Render(text string, rows int) string {
	if text == "" || rows <= 0 {
		return ""
	}
	f, err := loadFace()
	if err != nil {
		return ""
	}

	_, advance := font.BoundString(f, text)
	glyphHeight := (refBound.Max.Y - refBound.Min.Y).Ceil()
	srcWidth := advance.Ceil() + padding*2
	srcHeight := glyphHeight + padding*2

	src := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: f,
		Dot:  fixed.P(padding, padding-refBound.Min.Y.Floor()),
	}
	d.DrawString(text)

	cols := int(math.Round(float64(srcWidth) * float64(rows*2) / float64(srcHeight)))
	if cols < 1 {
		cols = 1
	}

	return imageToHalfBlocks(scaleDown(src, cols, rows*2), cols, rows)
}

// scaleDown scales a grayscale image using area averaging
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Max.X
	srcHeight := src.Bounds().Max.Y

	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1 := int(float64(dx) * xRatio)
			sy1 := int(float64(dy) * yRatio)
			sx2 := min(int(float64(dx+1)*xRatio), srcWidth)
			sy2 := min(int(float64(dy+1)*yRatio), srcHeight)

			// Upscaling maps a cell to less than one source pixel.
			if sx2 <= sx1 {
				sx2 = sx1 + 1
			}
			if sy2 <= sy1 {
				sy2 = sy1 + 1
			}

			var sum, count int
			for sy := sy1; sy < sy2 && sy < srcHeight; sy++ {
				for sx := sx1; sx < sx2 && sx < srcWidth; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}
			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}

	return dst
}

func imageToHalfBlocks(img *image.Gray, cols, rows int) string {
	var b strings.Builder

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := brightness(img, col, row*2) > threshold
			bottom := brightness(img, col, row*2+1) > threshold

			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if row < rows-1 {
			b.WriteRune('\n')
		}
	}

	return b.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if x < 0 || y < 0 || x >= img.Bounds().Max.X || y >= img.Bounds().Max.Y {
		return 0
	}
	return img.GrayAt(x, y).Y
}

type cacheKey struct {
	text string
	rows int
}

var (
	cacheMu sync.Mutex
	cache   = make(map[cacheKey]string)
)

// GetCached returns the cached rendering of text or renders it.
func GetCached(text string, rows int) string {
	key := cacheKey{text, rows}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[key]; ok {
		return s
	}
	s := Render(text, rows)
	cache[key] = s
	return s
}
