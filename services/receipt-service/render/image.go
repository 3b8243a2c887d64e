package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	DefaultImageWidth  = 576
	minImageWidth      = 200
	maxImageWidth      = 2048
	DefaultJPEGQuality = 90

	// MaxImagePixels bounds the RGBA canvas (4 bytes per pixel).
	MaxImagePixels = 48_000_000
)

// ImageFormat describes an encoded raster receipt.
type ImageFormat struct {
	ContentType string
	Extension   string
}

var imageFormats = map[string]ImageFormat{
	"png":  {"image/png", "png"},
	"jpeg": {"image/jpeg", "jpg"},
	"jpg":  {"image/jpeg", "jpg"},
	"webp": {"image/webp", "webp"},
}

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

// imageCanShow reports whether the Go fonts have a glyph for every rune of s.
func imageCanShow(s string) bool {
	for _, r := range s {
		if regularFont.Index(r) == 0 || boldFont.Index(r) == 0 {
			return false
		}
	}
	return true
}

// faceSet holds the faces of one render. truetype faces cache glyphs and
// must not be shared between goroutines.
type faceSet struct {
	regular, bold, large, largeBold font.Face
}

func newFaceSet(size float64) *faceSet {
	return &faceSet{
		regular:   truetype.NewFace(regularFont, &truetype.Options{Size: size}),
		bold:      truetype.NewFace(boldFont, &truetype.Options{Size: size}),
		large:     truetype.NewFace(regularFont, &truetype.Options{Size: size * 1.35}),
		largeBold: truetype.NewFace(boldFont, &truetype.Options{Size: size * 1.35}),
	}
}

func (f *faceSet) pick(bold, large bool) font.Face {
	switch {
	case bold && large:
		return f.largeBold
	case large:
		return f.large
	case bold:
		return f.bold
	}
	return f.regular
}

func (f *faceSet) Close() {
	for _, face := range []font.Face{f.regular, f.bold, f.large, f.largeBold} {
		_ = face.Close()
	}
}

type imageRow struct {
	left, right string
	align       Align
	bold, large bool
	rule        bool
	height      float64
}

// ResolveImageFormat maps the requested type onto an encoder. An empty type
// means PNG.
func ResolveImageFormat(kind string) (ImageFormat, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = "png"
	}
	f, ok := imageFormats[kind]
	if !ok {
		return ImageFormat{}, fmt.Errorf("%w: unsupported image type %q (png, jpeg, webp)", ErrInvalidOptions, kind)
	}
	return f, nil
}

// RenderImage draws the receipt on a white canvas of opts.Width pixels and
// encodes it in the requested format.
func RenderImage(r *models.ReceiptData, opts models.ImageOptions) ([]byte, ImageFormat, error) {
	format, err := ResolveImageFormat(opts.Type)
	if err != nil {
		return nil, ImageFormat{}, err
	}
	width := opts.Width
	if width == 0 {
		width = DefaultImageWidth
	}
	if width < minImageWidth || width > maxImageWidth {
		return nil, ImageFormat{}, fmt.Errorf("%w: width must be between %d and %d", ErrInvalidOptions, minImageWidth, maxImageWidth)
	}
	quality := opts.Quality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	if quality < 1 || quality > 100 {
		return nil, ImageFormat{}, fmt.Errorf("%w: quality must be between 1 and 100", ErrInvalidOptions)
	}

	if err := loadFonts(); err != nil {
		return nil, ImageFormat{}, fmt.Errorf("load fonts: %w", err)
	}

	fontSize := float64(width) / 30
	faces := newFaceSet(fontSize)
	defer faces.Close()

	margin := math.Round(float64(width) * 0.05)
	contentW := float64(width) - 2*margin

	measureCtx := gg.NewContext(1, 1)
	rows := planImage(measureCtx, faces, BuildLayoutFor(r, imageCanShow), contentW, fontSize)

	height := 2 * margin
	for _, row := range rows {
		height += row.height
	}

	if float64(width)*math.Ceil(height) > MaxImagePixels {
		return nil, ImageFormat{}, fmt.Errorf("%w: receipt is too long for a %dpx image, use a narrower width or PDF", ErrInvalidOptions, width)
	}

	dc := gg.NewContext(width, int(math.Ceil(height)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	drawImage(dc, faces, rows, margin, contentW, fontSize)

	body, err := encodeImage(dc.Image(), format, quality)
	if err != nil {
		return nil, ImageFormat{}, err
	}
	return body, format, nil
}

func planImage(dc *gg.Context, faces *faceSet, lines []Line, contentW, size float64) []imageRow {
	lineH := func(large bool) float64 {
		if large {
			return size * 1.35 * 1.45
		}
		return size * 1.45
	}

	var rows []imageRow
	for _, ln := range lines {
		switch ln.Kind {
		case LineRule:
			rows = append(rows, imageRow{rule: true, height: size})
		case LineBlank:
			rows = append(rows, imageRow{height: size * 0.75})
		case LineText:
			dc.SetFontFace(faces.pick(ln.Bold, ln.Large))
			measure := func(s string) float64 { w, _ := dc.MeasureString(s); return w }
			for _, part := range WrapText(ln.Text, contentW, measure) {
				rows = append(rows, imageRow{left: part, align: ln.Align, bold: ln.Bold, large: ln.Large, height: lineH(ln.Large)})
			}
		case LinePair:
			dc.SetFontFace(faces.pick(ln.Bold, ln.Large))
			measure := func(s string) float64 { w, _ := dc.MeasureString(s); return w }
			rightW, _ := dc.MeasureString(ln.Right)
			leftW := contentW - rightW - size
			h := lineH(ln.Large)
			if leftW < contentW*0.4 {
				for _, part := range WrapText(ln.Text, contentW, measure) {
					rows = append(rows, imageRow{left: part, bold: ln.Bold, large: ln.Large, height: h})
				}
				rows = append(rows, imageRow{right: ln.Right, bold: ln.Bold, large: ln.Large, height: h})
				continue
			}
			for i, part := range WrapText(ln.Text, leftW, measure) {
				row := imageRow{left: part, bold: ln.Bold, large: ln.Large, height: h}
				if i == 0 {
					row.right = ln.Right
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func drawImage(dc *gg.Context, faces *faceSet, rows []imageRow, margin, contentW, size float64) {
	y := margin
	for _, row := range rows {
		mid := y + row.height/2
		if row.rule {
			dc.SetDash(size/3, size/4)
			dc.SetLineWidth(math.Max(1, size/12))
			dc.DrawLine(margin, mid, margin+contentW, mid)
			dc.Stroke()
			dc.SetDash()
			y += row.height
			continue
		}

		dc.SetFontFace(faces.pick(row.bold, row.large))
		if row.left != "" {
			switch row.align {
			case AlignCenter:
				dc.DrawStringAnchored(row.left, margin+contentW/2, mid, 0.5, 0.35)
			case AlignRight:
				dc.DrawStringAnchored(row.left, margin+contentW, mid, 1, 0.35)
			default:
				dc.DrawStringAnchored(row.left, margin, mid, 0, 0.35)
			}
		}
		if row.right != "" {
			dc.DrawStringAnchored(row.right, margin+contentW, mid, 1, 0.35)
		}
		y += row.height
	}
}

func encodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format.ContentType {
	case "image/jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "image/webp":
		err = nativewebp.Encode(&buf, img, nil)
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format.Extension, err)
	}
	return buf.Bytes(), nil
}
