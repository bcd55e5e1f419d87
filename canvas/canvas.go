// Package canvas is the pixel buffer a frame is rendered into, and its
// serializations.
package canvas

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"whitted/rgb"
)

// MaxPPMLine is the longest line WritePPM emits.
const MaxPPMLine = 70

// Canvas is a Width x Height grid of float colors, stored row-major with
// (0, 0) at the top left.
type Canvas struct {
	Width, Height int
	Pix           []rgb.T
}

func New(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pix:    make([]rgb.T, width*height),
	}
}

func (c *Canvas) Get(x, y int) rgb.T {
	return c.Pix[y*c.Width+x]
}

func (c *Canvas) Set(x, y int, v rgb.T) {
	c.Pix[y*c.Width+x] = v
}

// Row returns row y as a slice aliasing the canvas.
func (c *Canvas) Row(y int) []rgb.T {
	return c.Pix[y*c.Width : (y+1)*c.Width]
}

// Cut copies out the rectangle of rows [rowSrc, rowLim) and columns
// [colSrc, colLim) as a new canvas.
func (c *Canvas) Cut(rowSrc, rowLim, colSrc, colLim int) *Canvas {
	dst := New(colLim-colSrc, rowLim-rowSrc)
	for r := rowSrc; r < rowLim; r++ {
		copy(dst.Row(r-rowSrc), c.Pix[r*c.Width+colSrc:r*c.Width+colLim])
	}
	return dst
}

// Paste copies src over c with its top left corner at (colSrc, rowSrc).
func (c *Canvas) Paste(src *Canvas, rowSrc, colSrc int) {
	for r := 0; r < src.Height; r++ {
		dstStart := (rowSrc+r)*c.Width + colSrc
		copy(c.Pix[dstStart:dstStart+src.Width], src.Row(r))
	}
}

// WritePPM writes c as a plain ("P3") PPM.  Each row starts on a new line,
// and long rows are wrapped between values so no line exceeds MaxPPMLine
// characters.
func (c *Canvas) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", c.Width, c.Height); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	var line []byte
	for y := 0; y < c.Height; y++ {
		line = line[:0]
		for _, px := range c.Row(y) {
			for _, ch := range px {
				var num [3]byte
				v := strconv.AppendUint(num[:0], uint64(rgb.Byte(ch)), 10)

				if len(line) > 0 && len(line)+1+len(v) > MaxPPMLine {
					line = append(line, '\n')
					if _, err := bw.Write(line); err != nil {
						return fmt.Errorf("while writing row %d: %w", y, err)
					}
					line = line[:0]
				}
				if len(line) > 0 {
					line = append(line, ' ')
				}
				line = append(line, v...)
			}
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("while writing row %d: %w", y, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while flushing: %w", err)
	}
	return nil
}

// Image converts c to an 8-bit image, clamping each channel.
func (c *Canvas) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			v := c.Get(x, y)
			im.SetNRGBA(x, y, color.NRGBA{
				R: rgb.Byte(v[0]),
				G: rgb.Byte(v[1]),
				B: rgb.Byte(v[2]),
				A: 255,
			})
		}
	}
	return im
}

func (c *Canvas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.Image()); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}

// Encoder writes a canvas in some image format.
type Encoder func(c *Canvas, w io.Writer) error

// EncoderFor picks an encoder from a file extension such as ".ppm".
func EncoderFor(ext string) (Encoder, error) {
	switch ext {
	case ".ppm":
		return (*Canvas).WritePPM, nil
	case ".png":
		return (*Canvas).WritePNG, nil
	}
	return nil, fmt.Errorf("unsupported image format %q", ext)
}
