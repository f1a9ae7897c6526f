// Package input delivers encoded shortcuts to the game process and enforces
// the post-action cooldown the rest of the cycle's timing depends on.
package input

import (
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/SolarShards/XIVAutoCrafter/internal/catalog"
	"github.com/SolarShards/XIVAutoCrafter/internal/keymap"
)

// KeyStatus is the outcome of one key transmission. Failures are values, not
// errors: a bad key never aborts the rest of the action.
type KeyStatus int

const (
	KeySent KeyStatus = iota
	KeyFailed
)

// KeyResult records the outcome for a single main key.
type KeyResult struct {
	Key    string
	Status KeyStatus
	Err    error
}

// Result aggregates the per-key outcomes of one action.
type Result struct {
	Keys []KeyResult
}

// Failed counts the keys that did not transmit.
func (r Result) Failed() int {
	n := 0
	for _, k := range r.Keys {
		if k.Status == KeyFailed {
			n++
		}
	}
	return n
}

// Target is the window the dispatcher injects into.
type Target interface {
	PID() (int, error)
	Invalidate()
}

// Dispatcher executes actions against the game window. Input is delivered to
// the target process id so the game does not need to be the foreground
// window.
type Dispatcher struct {
	target Target
	warnf  func(format string, args ...any)

	// Injection points for tests.
	tap   func(key string, pid int, mods []string) error
	sleep func(time.Duration)
}

// NewDispatcher creates a dispatcher for the given target. warnf receives a
// line per failed key; it may be nil.
func NewDispatcher(target Target, warnf func(format string, args ...any)) *Dispatcher {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Dispatcher{
		target: target,
		warnf:  warnf,
		tap:    tapKey,
		sleep:  time.Sleep,
	}
}

// Execute sends the action's shortcut and then sleeps its cooldown. The
// cooldown is honored unconditionally, even when every key failed or the
// window was unreachable: downstream timing assumes the game had this long to
// settle regardless of what was delivered.
func (d *Dispatcher) Execute(a catalog.Action) Result {
	var res Result

	combo := keymap.Parse(a.Shortcut)
	if len(combo.Keys) > 0 {
		pid, err := d.target.PID()
		if err != nil {
			d.warnf("dropping %q: %v", a.Shortcut, err)
			for _, k := range combo.Keys {
				res.Keys = append(res.Keys, KeyResult{Key: k, Status: KeyFailed, Err: err})
			}
		} else {
			mods := combo.Modifiers()
			for _, k := range combo.Keys {
				if err := d.tap(k, pid, mods); err != nil {
					d.warnf("key %q failed: %v", k, err)
					d.target.Invalidate()
					res.Keys = append(res.Keys, KeyResult{Key: k, Status: KeyFailed, Err: err})
					continue
				}
				res.Keys = append(res.Keys, KeyResult{Key: k, Status: KeySent})
			}
		}
	}

	if a.Cooldown > 0 {
		d.sleep(a.Cooldown)
	}
	return res
}

// tapKey presses and releases a key in the target process.
func tapKey(key string, pid int, mods []string) error {
	args := make([]interface{}, 0, len(mods)+1)
	for _, m := range mods {
		args = append(args, m)
	}
	args = append(args, pid)
	return robotgo.KeyTap(key, args...)
}
