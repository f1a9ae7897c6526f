package screen

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
)

// Detector reports whether the crafting log is currently visible. It is
// read-only and must be cheap enough to call once per second: every failure
// mode (no window, capture error, no match) answers false, never an error.
type Detector interface {
	CraftingUIOpen() bool
}

// BoundsSource locates the target window on screen.
type BoundsSource interface {
	Bounds() (image.Rectangle, error)
}

// TemplateDetector matches a reference image of the crafting log against the
// captured window.
type TemplateDetector struct {
	win      BoundsSource
	searcher *Searcher
	template image.Image

	// capture is swappable for tests.
	capture func(image.Rectangle) (image.Image, error)
}

// NewTemplateDetector creates a detector for the given window and reference
// image. A nil template yields a detector that always answers false.
func NewTemplateDetector(win BoundsSource, searcher *Searcher, template image.Image) *TemplateDetector {
	return &TemplateDetector{
		win:      win,
		searcher: searcher,
		template: template,
		capture:  searcher.CaptureRect,
	}
}

// CraftingUIOpen captures the window and looks for the reference image.
func (d *TemplateDetector) CraftingUIOpen() bool {
	if d.template == nil {
		return false
	}
	rect, err := d.win.Bounds()
	if err != nil {
		return false
	}
	img, err := d.capture(rect)
	if err != nil {
		return false
	}
	_, _, found := d.searcher.FindTemplate(img, d.template, constants.MatchThreshold, constants.QuickRejectTolerance)
	return found
}

// CraftingLogTitles are the localized names of the crafting log panel, in the
// order they are tried by the OCR detector.
var CraftingLogTitles = []string{
	"Crafting Log",         // en
	"Carnet d'artisanat",   // fr
	"Handwerker-Notizbuch", // de
	"製作手帳",                 // ja
}

// OCRDetector recognizes text over the captured window and looks for one of
// the known crafting log titles. The first title that matches is cached so
// later calls are a direct substring check against a single candidate before
// falling back to the full list.
type OCRDetector struct {
	win    BoundsSource
	titles []string
	cached string

	capture   func(image.Rectangle) (image.Image, error)
	recognize func(image.Image) (string, error)
}

// NewOCRDetector creates an OCR-based detector for the given window.
func NewOCRDetector(win BoundsSource, searcher *Searcher) *OCRDetector {
	return &OCRDetector{
		win:       win,
		titles:    CraftingLogTitles,
		capture:   searcher.CaptureRect,
		recognize: recognizeText,
	}
}

// CraftingUIOpen captures the window, runs OCR and checks for a known title.
func (d *OCRDetector) CraftingUIOpen() bool {
	rect, err := d.win.Bounds()
	if err != nil {
		return false
	}
	img, err := d.capture(rect)
	if err != nil {
		return false
	}
	text, err := d.recognize(img)
	if err != nil {
		return false
	}

	if d.cached != "" && strings.Contains(text, d.cached) {
		return true
	}
	for _, title := range d.titles {
		if strings.Contains(text, title) {
			d.cached = title
			return true
		}
	}
	return false
}

// recognizeText runs tesseract over the image. A fresh client per call keeps
// the detector stateless; the call budget is one per second at most.
func recognizeText(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage("eng", "fra", "deu", "jpn"); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}
	return client.Text()
}
