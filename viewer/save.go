package viewer

import (
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/kinectviewer/rimage"
)

// Naming selects how saved frame pairs are named.
type Naming string

// The supported namings.
const (
	// NamingDate stamps files with the UTC time, e.g. 2021-03-04_05-06-07.
	NamingDate Naming = "date"
	// NamingEpoch stamps files with milliseconds since the unix epoch.
	NamingEpoch Naming = "epoch"
)

// DateLayout is the time layout used by NamingDate.
const DateLayout = "2006-01-02_15-04-05"

// Format is the encoding of the saved color image.
type Format string

// The supported color formats. The distance image is always a 16-bit png since the other
// formats only hold 8 bits per channel.
const (
	FormatPNG Format = "png"
	FormatQOI Format = "qoi"
	FormatPPM Format = "ppm"
)

// Suffixes of the two saved images. The color suffix is followed by the format extension.
const (
	ColorSuffix = "_c"
	DepthSuffix = "_d.png"
)

// Validate ensures the format is known.
func (f Format) Validate() error {
	switch f {
	case FormatPNG, FormatQOI, FormatPPM:
		return nil
	default:
		return errors.Errorf("unknown save format %q, expected one of %q, %q or %q", f, FormatPNG, FormatQOI, FormatPPM)
	}
}

// Validate ensures the naming is known.
func (n Naming) Validate() error {
	switch n {
	case NamingDate, NamingEpoch:
		return nil
	default:
		return errors.Errorf("unknown save naming %q, expected %q or %q", n, NamingDate, NamingEpoch)
	}
}

// Saver writes frame pairs into a directory.
type Saver struct {
	dir    string
	naming Naming
	format Format
	clock  clock.Clock
	writer ImageWriter
}

// NewSaver returns a saver. An empty dir means the working directory; an empty naming or format
// selects date naming and png.
func NewSaver(dir string, naming Naming, format Format, clk clock.Clock, writer ImageWriter) *Saver {
	if naming == "" {
		naming = NamingDate
	}
	if format == "" {
		format = FormatPNG
	}
	return &Saver{dir: dir, naming: naming, format: format, clock: clk, writer: writer}
}

// Stamp returns the name prefix for a pair saved now.
func (s *Saver) Stamp() string {
	now := s.clock.Now()
	if s.naming == NamingEpoch {
		return strconv.FormatInt(now.UnixMilli(), 10)
	}
	return now.UTC().Format(DateLayout)
}

// Save writes the color frame and the distance frame as a 16-bit image. Both writes are
// attempted even if the first fails.
func (s *Saver) Save(dm *rimage.DepthMap, img *rimage.Image) (colorPath, depthPath string, err error) {
	if dm == nil || img == nil {
		return "", "", errors.New("no frame to save yet")
	}
	stamp := s.Stamp()
	colorPath = filepath.Join(s.dir, stamp+ColorSuffix+"."+string(s.format))
	depthPath = filepath.Join(s.dir, stamp+DepthSuffix)
	err = multierr.Combine(
		errors.Wrapf(s.writer.Save(depthPath, dm.ToGray16Picture()), "saving %q", depthPath),
		errors.Wrapf(s.writer.Save(colorPath, img), "saving %q", colorPath),
	)
	return colorPath, depthPath, err
}

// FileWriter writes images to the local filesystem, picking the encoding from the extension.
type FileWriter struct{}

// Save writes img to path, creating the parent directory if needed.
func (FileWriter) Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return rimage.WriteImageToFile(path, img)
}
