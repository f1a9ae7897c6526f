// Package tools provides the template capture panel: grab the game window,
// drag-select the crafting log's title area, and save it as the reference
// image the detector matches against.
package tools

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/window"
)

// Languages with a template directory.
var languages = []string{"en", "fr", "de", "ja"}

// NewTemplatePanel creates the capture & crop tool.
func NewTemplatePanel(win fyne.Window, handle *window.Handle) fyne.CanvasObject {
	langSelect := widget.NewSelect(languages, nil)
	langSelect.SetSelected(constants.DefaultLanguage)

	infoLabel := widget.NewLabel(
		"1. Open the crafting log in the game\n" +
			"2. Capture the game window\n" +
			"3. Drag-select the crafting log panel\n" +
			"4. Save it as the reference image")
	infoLabel.Alignment = fyne.TextAlignCenter

	captureBtn := widget.NewButton("Capture & Crop", func() {
		img, err := captureGameWindow(handle)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		showCropperWindow(img, langSelect.Selected)
	})
	captureBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabel("Template language:"),
		langSelect,
		widget.NewSeparator(),
		infoLabel,
		captureBtn,
	)
}

// captureGameWindow grabs the game window's screen rectangle, falling back to
// the primary display when the window cannot be located.
func captureGameWindow(handle *window.Handle) (image.Image, error) {
	rect, err := handle.Bounds()
	if err != nil {
		rect = screenshot.GetDisplayBounds(0)
	}
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	return img, nil
}

func showCropperWindow(fullImg image.Image, lang string) {
	w := fyne.CurrentApp().NewWindow("Crop Template")
	w.Resize(fyne.NewSize(800, 600))

	lbl := widget.NewLabel("Drag to select the crafting log panel...")
	lbl.Alignment = fyne.TextAlignCenter

	saveBtn := widget.NewButton("Save Selection", nil)
	saveBtn.Disable()

	var selection image.Rectangle
	selector := NewRegionSelector(fullImg, func(rect image.Rectangle) {
		selection = rect
		lbl.SetText(fmt.Sprintf("Selected: %v", rect))
		saveBtn.Enable()
	})

	saveBtn.OnTapped = func() {
		if selection.Empty() {
			return
		}
		sub, ok := fullImg.(interface {
			SubImage(r image.Rectangle) image.Image
		})
		if !ok {
			dialog.ShowError(fmt.Errorf("image type does not support cropping"), w)
			return
		}
		showSaveForm(w, sub.SubImage(selection), lang)
	}

	w.SetContent(container.NewBorder(nil, container.NewVBox(lbl, saveBtn), nil, nil, selector))
	w.Show()
}

func showSaveForm(win fyne.Window, img image.Image, lang string) {
	preview := canvas.NewImageFromImage(img)
	preview.FillMode = canvas.ImageFillContain
	preview.SetMinSize(fyne.NewSize(100, 100))

	dir := filepath.Join(constants.TemplateDir, lang)
	target := filepath.Join(dir, constants.CraftWindowTemplate)

	content := container.NewVBox(
		widget.NewLabel("Save this as the crafting log reference?"),
		container.NewCenter(preview),
		widget.NewLabel(target),
	)

	dialog.ShowCustomConfirm("Save Template", "Save", "Cancel", content, func(confirm bool) {
		if !confirm {
			return
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			dialog.ShowError(err, win)
			return
		}
		f, err := os.Create(target)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			dialog.ShowError(err, win)
			return
		}
		dialog.ShowInformation("Saved", target, win)
		win.Close()
	}, win)
}
