package export

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/san-kum/isingsim/internal/lattice"
)

// GIFAnimationSink encodes every recorded frame into one looping GIF.
// Delay is in hundredths of a second; Scale is pixels per site.
type GIFAnimationSink struct {
	Path  string
	Delay int
	Scale int
}

func NewGIFAnimationSink(path string, delay, scale int) *GIFAnimationSink {
	if delay <= 0 {
		delay = 10
	}
	if scale <= 0 {
		scale = 1
	}
	return &GIFAnimationSink{Path: path, Delay: delay, Scale: scale}
}

func (s *GIFAnimationSink) OnFrames(frames []lattice.View) error {
	if len(frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, FrameImage(frame, s.Scale))
		anim.Delay = append(anim.Delay, s.Delay)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FrameImage rasterizes v with scale×scale pixels per site.
func FrameImage(v lattice.View, scale int) *image.Paletted {
	n := v.Size()
	pal := color.Palette{DownColor, UpColor}
	img := image.NewPaletted(image.Rect(0, 0, n*scale, n*scale), pal)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			var idx uint8
			if v.Get(x, y) == lattice.Up {
				idx = 1
			}
			for py := 0; py < scale; py++ {
				for px := 0; px < scale; px++ {
					img.SetColorIndex(x*scale+px, y*scale+py, idx)
				}
			}
		}
	}
	return img
}
