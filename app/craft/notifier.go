package craft

import (
	"fyne.io/fyne/v2/data/binding"

	"github.com/SolarShards/XIVAutoCrafter/internal/engine"
	"github.com/SolarShards/XIVAutoCrafter/internal/logger"
)

// uiNotifier bridges the crafter's notifications into fyne data bindings.
// Bindings are safe to update from the worker goroutine; widgets observing
// them refresh on the UI thread.
type uiNotifier struct {
	log      *logger.AppLogger
	status   binding.String
	progress binding.Float
	state    binding.Int
}

func newUINotifier(log *logger.AppLogger, status binding.String, progress binding.Float, state binding.Int) *uiNotifier {
	return &uiNotifier{log: log, status: status, progress: progress, state: state}
}

func (n *uiNotifier) StateChanged(state engine.State) {
	n.state.Set(int(state))
	n.status.Set("Status: " + state.String())
	if state == engine.StateStopped {
		n.progress.Set(0)
	}
}

func (n *uiNotifier) Progress(fraction float64) {
	n.progress.Set(fraction)
}

func (n *uiNotifier) Log(sev engine.Severity, format string, args ...any) {
	switch sev {
	case engine.SeverityWarning:
		n.log.Warn(format, args...)
	case engine.SeverityError:
		n.log.Error(format, args...)
	default:
		n.log.Info(format, args...)
	}
}
