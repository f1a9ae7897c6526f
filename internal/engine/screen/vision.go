// Package screen answers the one safety-critical question of the automation:
// is the crafting log currently on screen. It captures the game window's
// pixels and matches them against a reference image (or recognized text).
package screen

import (
	"fmt"
	"image"
	_ "image/png" // register PNG decoder for image.Decode
	"math"
	"os"

	"github.com/kbinani/screenshot"
)

// Searcher handles window capture and template matching.
type Searcher struct{}

// NewSearcher creates a new instance.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// LoadImage loads a reference image from the filesystem.
func (s *Searcher) LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// CaptureRect grabs the given screen rectangle.
func (s *Searcher) CaptureRect(r image.Rectangle) (image.Image, error) {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %w", r, err)
	}
	return img, nil
}

// FindTemplate searches for templateImg inside screenImg. Candidate positions
// are prefiltered by comparing three key pixels within tolerance; survivors
// are scored by normalized cross-correlation. Returns the center of the best
// match, its score, and whether the score reached threshold.
func (s *Searcher) FindTemplate(screenImg, templateImg image.Image, threshold, tolerance float64) (image.Point, float64, bool) {
	sBounds := screenImg.Bounds()
	tBounds := templateImg.Bounds()
	tWidth, tHeight := tBounds.Dx(), tBounds.Dy()

	if tWidth == 0 || tHeight == 0 || sBounds.Dx() < tWidth || sBounds.Dy() < tHeight {
		return image.Point{}, 0, false
	}

	tpl := newGrayPlane(templateImg)
	scr := newGrayPlane(screenImg)
	if tpl.norm == 0 {
		// Flat template: correlation is undefined, nothing can match.
		return image.Point{}, 0, false
	}

	// Key pixels for quick rejection: top-left, center, bottom-right.
	k0x, k0y := 0, 0
	k1x, k1y := tWidth/2, tHeight/2
	k2x, k2y := tWidth-1, tHeight-1
	t0 := tpl.at(k0x, k0y)
	t1 := tpl.at(k1x, k1y)
	t2 := tpl.at(k2x, k2y)

	best := image.Point{}
	bestScore := -1.0

	for y := 0; y <= scr.h-tHeight; y++ {
		for x := 0; x <= scr.w-tWidth; x++ {
			// Quick checks
			if math.Abs(scr.at(x+k0x, y+k0y)-t0) > tolerance {
				continue
			}
			if math.Abs(scr.at(x+k1x, y+k1y)-t1) > tolerance {
				continue
			}
			if math.Abs(scr.at(x+k2x, y+k2y)-t2) > tolerance {
				continue
			}

			score := tpl.correlate(scr, x, y)
			if score > bestScore {
				bestScore = score
				best = image.Point{X: x + tWidth/2, Y: y + tHeight/2}
			}
		}
	}

	if bestScore >= threshold {
		return best, bestScore, true
	}
	return image.Point{}, bestScore, false
}

// grayPlane is a luminance buffer with the precomputed statistics needed for
// normalized cross-correlation.
type grayPlane struct {
	pix  []float64
	w, h int

	mean float64
	norm float64 // sqrt of the sum of squared deviations from mean
}

func newGrayPlane(img image.Image) *grayPlane {
	b := img.Bounds()
	p := &grayPlane{
		pix: make([]float64, b.Dx()*b.Dy()),
		w:   b.Dx(),
		h:   b.Dy(),
	}

	sum := 0.0
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			v := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			p.pix[i] = v
			sum += v
			i++
		}
	}
	p.mean = sum / float64(len(p.pix))

	sq := 0.0
	for _, v := range p.pix {
		d := v - p.mean
		sq += d * d
	}
	p.norm = math.Sqrt(sq)
	return p
}

func (p *grayPlane) at(x, y int) float64 {
	return p.pix[y*p.w+x]
}

// correlate computes the zero-mean normalized cross-correlation of the
// template p against the window of scr whose top-left is (sx, sy).
func (p *grayPlane) correlate(scr *grayPlane, sx, sy int) float64 {
	n := float64(p.w * p.h)

	// Window statistics.
	sum := 0.0
	for y := 0; y < p.h; y++ {
		row := (sy + y) * scr.w
		for x := 0; x < p.w; x++ {
			sum += scr.pix[row+sx+x]
		}
	}
	wMean := sum / n

	num := 0.0
	wSq := 0.0
	for y := 0; y < p.h; y++ {
		row := (sy + y) * scr.w
		for x := 0; x < p.w; x++ {
			sd := scr.pix[row+sx+x] - wMean
			td := p.at(x, y) - p.mean
			num += sd * td
			wSq += sd * sd
		}
	}
	if wSq == 0 {
		return 0
	}
	return num / (math.Sqrt(wSq) * p.norm)
}
