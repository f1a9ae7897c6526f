// Package craft provides the run-control panel: pick a recipe, set a
// quantity, drive start/pause/resume/stop, and watch progress and logs.
// Recipe and shortcut editing happens in the catalog file, not here.
package craft

import (
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"

	"github.com/SolarShards/XIVAutoCrafter/internal/catalog"
	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/input"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/screen"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/window"
	"github.com/SolarShards/XIVAutoCrafter/internal/logger"
)

// NewCraftPanel builds the crafting tab. The detector prefers the template
// strategy and falls back to OCR when no reference image is available for the
// configured language.
func NewCraftPanel(store *catalog.Store, handle *window.Handle, lang string) fyne.CanvasObject {
	// --- Data Binding ---
	logData := binding.NewStringList()
	statusData := binding.NewString()
	progressData := binding.NewFloat()
	stateData := binding.NewInt()
	statusData.Set("Status: stopped")

	appLogger := logger.NewAppLogger(logData)
	notifier := newUINotifier(appLogger, statusData, progressData, stateData)

	// --- Engine wiring ---
	searcher := screen.NewSearcher()
	detector := buildDetector(handle, searcher, lang, appLogger)
	dispatcher := input.NewDispatcher(handle, appLogger.Warn)
	crafter := engine.NewCrafter(store, detector, dispatcher, notifier)

	// --- UI Components ---
	recipeSelect := widget.NewSelect(store.RecipeNames(), nil)
	recipeSelect.PlaceHolder = "Select a recipe"

	refreshBtn := widget.NewButton("↻", func() {
		recipeSelect.Options = store.RecipeNames()
		recipeSelect.Refresh()
	})

	quantityEntry := widget.NewEntry()
	quantityEntry.SetPlaceHolder("Quantity")

	statusLabel := widget.NewLabelWithData(statusData)
	statusLabel.TextStyle = fyne.TextStyle{Bold: true}

	progressBar := widget.NewProgressBarWithData(progressData)

	logList := widget.NewListWithData(
		logData,
		func() fyne.CanvasObject { return widget.NewLabel("Log entry template") },
		func(i binding.DataItem, o fyne.CanvasObject) { o.(*widget.Label).Bind(i.(binding.String)) },
	)
	logData.AddListener(binding.NewDataListener(func() {
		list, _ := logData.Get()
		if len(list) > 0 {
			logList.ScrollToBottom()
		}
	}))

	startBtn := widget.NewButton("Start", nil)
	pauseBtn := widget.NewButton("Pause", nil)
	resumeBtn := widget.NewButton("Resume", nil)
	stopBtn := widget.NewButton("Stop", nil)

	startBtn.OnTapped = func() {
		if recipeSelect.Selected == "" {
			appLogger.Error("no recipe selected")
			return
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(quantityEntry.Text))
		if err != nil {
			appLogger.Error("invalid quantity %q", quantityEntry.Text)
			return
		}
		crafter.Start(quantity, recipeSelect.Selected)
	}
	pauseBtn.OnTapped = func() { crafter.Pause() }
	resumeBtn.OnTapped = func() { crafter.Resume() }
	stopBtn.OnTapped = func() { crafter.Stop() }

	// Button choreography follows the state machine.
	syncButtons := func() {
		state, _ := stateData.Get()
		switch engine.State(state) {
		case engine.StateRunning:
			startBtn.Disable()
			pauseBtn.Enable()
			resumeBtn.Disable()
			stopBtn.Enable()
		case engine.StatePaused:
			startBtn.Disable()
			pauseBtn.Disable()
			resumeBtn.Enable()
			stopBtn.Enable()
		default:
			startBtn.Enable()
			pauseBtn.Disable()
			resumeBtn.Disable()
			stopBtn.Disable()
		}
	}
	stateData.AddListener(binding.NewDataListener(syncButtons))
	syncButtons()

	controls := container.NewGridWithColumns(4, startBtn, pauseBtn, resumeBtn, stopBtn)
	top := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Recipe:"), refreshBtn, recipeSelect),
		container.NewBorder(nil, nil, widget.NewLabel("Quantity:"), nil, quantityEntry),
		controls,
		widget.NewSeparator(),
		statusLabel,
		progressBar,
	)

	return container.NewBorder(top, nil, nil, nil, logList)
}

// buildDetector loads the craft-window reference image for lang. When the
// image is missing the OCR strategy takes over.
func buildDetector(handle *window.Handle, searcher *screen.Searcher, lang string, log *logger.AppLogger) engine.Detector {
	path := filepath.Join(constants.TemplateDir, lang, constants.CraftWindowTemplate)
	img, err := searcher.LoadImage(path)
	if err != nil {
		log.Warn("no reference image at %s, using text recognition: %v", path, err)
		return screen.NewOCRDetector(handle, searcher)
	}
	log.Info("loaded reference image %s", path)
	return screen.NewTemplateDetector(handle, searcher, img)
}
