package tools

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// RegionSelector displays an image and lets the user drag out a rectangle.
// The selection is reported in source-image pixel coordinates.
type RegionSelector struct {
	widget.BaseWidget

	img        image.Image
	startPos   fyne.Position
	currentPos fyne.Position
	dragging   bool

	raster    *canvas.Image
	selection *canvas.Rectangle

	OnSelected func(rect image.Rectangle)
}

// NewRegionSelector creates a selector over img.
func NewRegionSelector(img image.Image, onSelected func(image.Rectangle)) *RegionSelector {
	s := &RegionSelector{img: img, OnSelected: onSelected}
	s.ExtendBaseWidget(s)

	s.raster = canvas.NewImageFromImage(img)
	s.raster.ScaleMode = canvas.ImageScalePixels // no smoothing, templates must stay exact
	s.raster.FillMode = canvas.ImageFillContain

	s.selection = canvas.NewRectangle(color.RGBA{R: 255, A: 60})
	s.selection.StrokeColor = color.RGBA{R: 255, A: 255}
	s.selection.StrokeWidth = 2
	s.selection.Hide()

	return s
}

func (s *RegionSelector) CreateRenderer() fyne.WidgetRenderer {
	return &selectorRenderer{
		selector: s,
		objects:  []fyne.CanvasObject{s.raster, s.selection},
	}
}

func (s *RegionSelector) Dragged(e *fyne.DragEvent) {
	if !s.dragging {
		s.dragging = true
		s.startPos = e.Position.Subtract(e.Dragged)
		s.selection.Show()
	}
	s.currentPos = e.Position
	s.Refresh()
}

func (s *RegionSelector) DragEnd() {
	s.dragging = false
	s.Refresh()
	s.reportSelection()
}

func (s *RegionSelector) Tapped(e *fyne.PointEvent) {
	s.startPos = e.Position
	s.currentPos = e.Position
	s.selection.Hide()
	s.Refresh()
}

func (s *RegionSelector) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

// drawnImageRect returns where the contained image actually sits inside the
// widget (offset + drawn size), accounting for aspect-fit letterboxing.
func (s *RegionSelector) drawnImageRect() (offset fyne.Position, size fyne.Size) {
	wBound := s.Size().Width
	hBound := s.Size().Height
	if wBound == 0 || hBound == 0 {
		return fyne.Position{}, fyne.Size{}
	}

	imgW := float32(s.img.Bounds().Dx())
	imgH := float32(s.img.Bounds().Dy())
	aspect := imgW / imgH

	if wBound/hBound > aspect {
		// View is wider: fit height.
		size = fyne.NewSize(hBound*aspect, hBound)
		offset = fyne.NewPos((wBound-size.Width)/2, 0)
	} else {
		size = fyne.NewSize(wBound, wBound/aspect)
		offset = fyne.NewPos(0, (hBound-size.Height)/2)
	}
	return offset, size
}

// reportSelection maps the drag rectangle back to image pixels and fires the
// callback, clamped to the image bounds.
func (s *RegionSelector) reportSelection() {
	if s.OnSelected == nil {
		return
	}
	offset, size := s.drawnImageRect()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	minX := min32(s.startPos.X, s.currentPos.X)
	minY := min32(s.startPos.Y, s.currentPos.Y)
	maxX := max32(s.startPos.X, s.currentPos.X)
	maxY := max32(s.startPos.Y, s.currentPos.Y)

	// Intersect the selection with the drawn image area.
	ix0 := max32(offset.X, minX)
	iy0 := max32(offset.Y, minY)
	ix1 := min32(offset.X+size.Width, maxX)
	iy1 := min32(offset.Y+size.Height, maxY)
	if ix1 <= ix0 || iy1 <= iy0 {
		return
	}

	scaleX := float32(s.img.Bounds().Dx()) / size.Width
	scaleY := float32(s.img.Bounds().Dy()) / size.Height

	rect := image.Rect(
		int((ix0-offset.X)*scaleX),
		int((iy0-offset.Y)*scaleY),
		int((ix1-offset.X)*scaleX),
		int((iy1-offset.Y)*scaleY),
	).Intersect(s.img.Bounds())

	if !rect.Empty() {
		s.OnSelected(rect)
	}
}

type selectorRenderer struct {
	selector *RegionSelector
	objects  []fyne.CanvasObject
}

func (r *selectorRenderer) Layout(size fyne.Size) {
	r.objects[0].Resize(size)
	r.objects[0].Move(fyne.NewPos(0, 0))
	r.layoutSelection()
}

func (r *selectorRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *selectorRenderer) Refresh() {
	r.layoutSelection()
	canvas.Refresh(r.selector)
}

func (r *selectorRenderer) layoutSelection() {
	s := r.selector
	minX := min32(s.startPos.X, s.currentPos.X)
	minY := min32(s.startPos.Y, s.currentPos.Y)
	maxX := max32(s.startPos.X, s.currentPos.X)
	maxY := max32(s.startPos.Y, s.currentPos.Y)

	r.objects[1].Move(fyne.NewPos(minX, minY))
	r.objects[1].Resize(fyne.NewSize(maxX-minX, maxY-minY))
}

func (r *selectorRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *selectorRenderer) Destroy() {}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
