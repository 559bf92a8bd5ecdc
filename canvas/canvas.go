package canvas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"go.viam.com/kinectviewer/rimage"
)

// ErrDimensionMismatch is returned when a panel image does not match its panel's size.
var ErrDimensionMismatch = errors.New("panel image dimensions do not match the panel")

// HelpText lists the key bindings shown above the panels.
const HelpText = "esc/q quit   s save   a auto-range   d depth alignment   v color source   click to probe"

// AxisTickSpacing is the distance between labeled ticks under the histogram, in millimeters.
const AxisTickSpacing = 1000

const textSize = 12

var (
	backgroundColor = color.RGBA{32, 32, 32, 255}
	chromeColor     = color.RGBA{160, 160, 160, 255}
)

// Canvas is the image the viewer presents. Chrome is drawn once when it is created; after that
// only panel interiors change.
type Canvas struct {
	layout Layout
	rects  map[Panel]image.Rectangle
	img    *image.RGBA
}

// New creates a canvas for the layout and draws the static chrome. bucketWidth places the
// histogram axis ticks.
func New(layout Layout, bucketWidth int) (*Canvas, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if bucketWidth <= 0 {
		return nil, errors.Errorf("bucket width must be positive, got %d", bucketWidth)
	}
	size := layout.Size()
	c := &Canvas{
		layout: layout,
		rects:  layout.Rects(),
		img:    image.NewRGBA(image.Rectangle{Max: size}),
	}
	c.drawChrome(bucketWidth)
	return c, nil
}

func (c *Canvas) drawChrome(bucketWidth int) {
	dc := gg.NewContextForRGBA(c.img)
	dc.SetColor(backgroundColor)
	dc.Clear()

	rimage.DrawString(dc, HelpText, image.Pt(Margin, 6), chromeColor, textSize)
	for p, r := range c.rects {
		if p == PanelStatus {
			continue
		}
		rimage.DrawRectangleEmpty(dc, r.Inset(-1), chromeColor, 1)
	}

	hist := c.rects[PanelHistogram]
	for mm := 0; mm/bucketWidth <= hist.Dx(); mm += AxisTickSpacing {
		x := hist.Min.X + mm/bucketWidth
		rimage.DrawLine(dc, image.Pt(x, hist.Max.Y+1), image.Pt(x, hist.Max.Y+5), chromeColor, 1)
		rimage.DrawStringCentered(dc, fmt.Sprintf("%d", mm), image.Pt(x, hist.Max.Y+12), chromeColor, textSize-2)
	}
}

// Layout returns the layout the canvas was built with.
func (c *Canvas) Layout() Layout {
	return c.layout
}

// Rect returns the rectangle of a panel.
func (c *Canvas) Rect(p Panel) image.Rectangle {
	return c.rects[p]
}

// Place copies img into the panel. The image must be exactly the panel's size.
func (c *Canvas) Place(p Panel, img image.Image) error {
	r, ok := c.rects[p]
	if !ok {
		return errors.Errorf("unknown panel %d", p)
	}
	if img.Bounds().Size() != r.Size() {
		return errors.Wrapf(ErrDimensionMismatch, "%s panel is %v, image is %v", p, r.Size(), img.Bounds().Size())
	}
	draw.Copy(c.img, r.Min, img, img.Bounds(), draw.Src, nil)
	return nil
}

// Image returns the canvas image. It is overwritten by later calls to Place.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Snapshot returns a copy of the canvas image.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}

// RenderText draws lines of text on a black image of the given size. Lines that do not fit are
// cut off.
func RenderText(size image.Point, lines []string) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(color.Black)
	dc.Clear()
	for i, line := range lines {
		rimage.DrawString(dc, line, image.Pt(4, 4+i*(textSize+4)), color.White, textSize)
	}
	return img
}
