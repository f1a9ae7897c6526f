// Package engine runs the crafting loop: a state machine that gates every
// destructive input sequence on the screen detector, keeps consumable buffs
// up, and reports progress over a notifier port. One run at a time; cycles
// execute strictly sequentially because the game is a single serial input
// consumer.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SolarShards/XIVAutoCrafter/internal/catalog"
	"github.com/SolarShards/XIVAutoCrafter/internal/constants"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/input"
)

// State is the crafter's lifecycle state.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Detector answers whether the crafting log is currently visible.
type Detector interface {
	CraftingUIOpen() bool
}

// Dispatcher delivers one action's keystrokes and enforces its cooldown.
type Dispatcher interface {
	Execute(a catalog.Action) input.Result
}

// errStopped aborts the cycle quietly after Stop already reported the
// transition.
var errStopped = errors.New("run stopped")

// hqSelectionSequence drives the ingredient panel when HQ materials are
// requested: focus the ingredient list, move to the HQ column, fill it,
// return to the synthesize button, then the final confirm that starts the
// craft. Expressed as roles so rebinding the directional shortcuts retunes
// the sequence.
var hqSelectionSequence = []catalog.Role{
	catalog.RoleUp,
	catalog.RoleRight,
	catalog.RoleConfirm,
	catalog.RoleDown,
	catalog.RoleConfirm,
}

// Crafter owns the live crafting session. It is the only component with
// mutable cross-cycle state; the detector and dispatcher are stateless
// service calls from its point of view.
type Crafter struct {
	store      *catalog.Store
	detector   Detector
	dispatcher Dispatcher
	notifier   Notifier

	mu         sync.Mutex
	state      State
	quantity   int
	completed  int
	recipeName string

	// Buff bookkeeping, touched only by the worker goroutine.
	food   BuffTimer
	potion BuffTimer

	pause *gate
	wg    sync.WaitGroup

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)

	pollInterval  time.Duration
	maxUIAttempts int
}

// Option configures a Crafter.
type Option func(*Crafter)

// WithUIPollInterval sets the wait between crafting-log detection attempts.
func WithUIPollInterval(d time.Duration) Option {
	return func(c *Crafter) { c.pollInterval = d }
}

// WithUIDetectAttempts bounds the wait-for-UI retry loop.
func WithUIDetectAttempts(n int) Option {
	return func(c *Crafter) { c.maxUIAttempts = n }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Crafter) { c.now = now }
}

// NewCrafter creates a stopped crafter. A nil notifier discards all
// notifications.
func NewCrafter(store *catalog.Store, detector Detector, dispatcher Dispatcher, notifier Notifier, opts ...Option) *Crafter {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	c := &Crafter{
		store:         store,
		detector:      detector,
		dispatcher:    dispatcher,
		notifier:      notifier,
		state:         StateStopped,
		pause:         newGate(true),
		now:           time.Now,
		sleep:         time.Sleep,
		pollInterval:  constants.UIPollInterval,
		maxUIAttempts: constants.DefaultUIDetectAttempts,
		food:          NewBuffTimer(constants.FoodBuffDuration),
		potion:        NewBuffTimer(constants.PotionBuffDuration),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Crafter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until the current worker, if any, has exited. Mostly useful in
// tests and at shutdown.
func (c *Crafter) Wait() {
	c.wg.Wait()
}

// Start validates the request and spawns the run loop. It returns immediately;
// progress and state changes arrive over the notifier. A start while a run is
// active is silently ignored. Validation failures are reported at ERROR and
// leave the crafter stopped.
func (c *Crafter) Start(quantity int, recipeName string) error {
	c.mu.Lock()
	if c.state != StateStopped {
		c.mu.Unlock()
		return nil
	}

	recipe, ok := c.store.Recipe(recipeName)
	if !ok {
		c.mu.Unlock()
		c.notifier.Log(SeverityError, "recipe %q not found", recipeName)
		return fmt.Errorf("%q: %w", recipeName, ErrUnknownRecipe)
	}
	if quantity <= 0 {
		c.mu.Unlock()
		c.notifier.Log(SeverityError, "invalid quantity %d", quantity)
		return ErrInvalidQuantity
	}
	if recipe.UseFood && !c.store.Fixed(catalog.RoleFood).Configured() {
		c.mu.Unlock()
		c.notifier.Log(SeverityError, "recipe uses food but no food shortcut is configured")
		return fmt.Errorf("food: %w", ErrMissingBuffConfiguration)
	}
	if recipe.UsePotion && !c.store.Fixed(catalog.RolePotion).Configured() {
		c.mu.Unlock()
		c.notifier.Log(SeverityError, "recipe uses a potion but no potion shortcut is configured")
		return fmt.Errorf("potion: %w", ErrMissingBuffConfiguration)
	}

	c.quantity = quantity
	c.completed = 0
	c.recipeName = recipeName
	c.state = StateRunning
	c.mu.Unlock()

	c.pause.Open()
	c.notifier.StateChanged(StateRunning)
	c.notifier.Log(SeverityInfo, "crafting %d x %s", quantity, recipeName)

	c.wg.Add(1)
	go c.run()
	return nil
}

// Pause suspends the run at the next cycle boundary. No-op unless running.
func (c *Crafter) Pause() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StatePaused
	c.mu.Unlock()

	c.pause.Close()
	c.notifier.StateChanged(StatePaused)
}

// Resume continues a paused run. No-op unless paused.
func (c *Crafter) Resume() {
	c.mu.Lock()
	if c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	c.state = StateRunning
	c.mu.Unlock()

	c.pause.Open()
	c.notifier.StateChanged(StateRunning)
}

// Stop ends the run. The loop observes it at the top of the next cycle and
// inside the wait-for-UI sub-loop, so stop latency is bounded by one action's
// cooldown plus one detector call, not by the remaining quantity.
func (c *Crafter) Stop() {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	c.state = StateStopped
	c.mu.Unlock()

	c.pause.Open()
	c.notifier.StateChanged(StateStopped)
}

// run is the worker loop. One cycle crafts one item.
func (c *Crafter) run() {
	defer c.wg.Done()

	c.food.Reset()
	c.potion.Reset()
	first := true

	for {
		if c.State() == StateStopped {
			return
		}
		c.pause.Wait()
		if c.State() == StateStopped {
			return
		}

		c.mu.Lock()
		recipeName := c.recipeName
		c.mu.Unlock()
		recipe, ok := c.store.Recipe(recipeName)
		if !ok {
			// Deleted out from under the run; without a rotation there is
			// nothing left to do.
			c.abort(fmt.Errorf("%q: %w", recipeName, ErrUnknownRecipe))
			return
		}

		if err := c.waitForCraftingUI(); err != nil {
			c.abort(err)
			return
		}

		buffed := false
		if recipe.UseFood || recipe.UsePotion {
			var err error
			buffed, err = c.maintainBuffs(recipe)
			if err != nil {
				c.abort(err)
				return
			}
		}

		for i := 0; i < constants.ConfirmChainLength; i++ {
			c.runFixed(catalog.RoleConfirm)
		}

		if recipe.UseHQIngredients && (buffed || first) {
			for _, role := range hqSelectionSequence {
				c.runFixed(role)
			}
		}

		c.runSteps(recipe)

		c.mu.Lock()
		c.completed++
		completed, quantity := c.completed, c.quantity
		c.mu.Unlock()

		c.notifier.Progress(float64(completed) / float64(quantity))
		c.notifier.Log(SeverityInfo, "crafted item %d/%d", completed, quantity)
		first = false

		if completed >= quantity {
			c.notifier.Log(SeverityInfo, "run complete")
			c.finish()
			return
		}
	}
}

// waitForCraftingUI blocks until the crafting log is visible, re-pressing the
// recipe-book shortcut once per attempt. Exhausting the attempt budget is
// fatal to the run.
func (c *Crafter) waitForCraftingUI() error {
	for attempt := 1; attempt <= c.maxUIAttempts; attempt++ {
		if c.detector.CraftingUIOpen() {
			return nil
		}
		if c.State() == StateStopped {
			return errStopped
		}
		c.notifier.Log(SeverityWarning, "crafting log not visible, reopening (attempt %d/%d)", attempt, c.maxUIAttempts)
		c.runFixed(catalog.RoleRecipeBook)
		c.sleep(c.pollInterval)
		if c.State() == StateStopped {
			return errStopped
		}
	}
	return ErrUIDetectionTimeout
}

// maintainBuffs reapplies whichever buffs are due. The crafting log is closed
// first because consumables cannot be used while the craft dialog has focus,
// and reopened (and re-verified) afterwards. Reports whether anything was
// reapplied.
func (c *Crafter) maintainBuffs(recipe catalog.Recipe) (bool, error) {
	now := c.now()
	needFood := recipe.UseFood && c.food.Due(now)
	needPotion := recipe.UsePotion && c.potion.Due(now)
	if !needFood && !needPotion {
		return false, nil
	}

	c.runFixed(catalog.RoleCancel)
	c.runFixed(catalog.RoleCancel)

	if needFood {
		if err := c.applyBuff(catalog.RoleFood, &c.food, "food"); err != nil {
			return false, err
		}
	}
	if needPotion {
		if err := c.applyBuff(catalog.RolePotion, &c.potion, "potion"); err != nil {
			return false, err
		}
	}

	c.runFixed(catalog.RoleRecipeBook)
	if err := c.waitForCraftingUI(); err != nil {
		return false, err
	}
	return true, nil
}

// applyBuff executes a buff action and records the application time. The
// timestamp is the moment the action ran, not the due check, so repeated due
// checks before the reapplication lands do not double-count.
func (c *Crafter) applyBuff(role catalog.Role, timer *BuffTimer, name string) error {
	action := c.store.Fixed(role)
	if !action.Configured() {
		return fmt.Errorf("%s: %w", name, ErrMissingBuffConfiguration)
	}
	c.notifier.Log(SeverityInfo, "applying %s buff", name)
	c.dispatcher.Execute(action)
	timer.MarkApplied(c.now())
	return nil
}

// runSteps executes the recipe's rotation, resolving each step name against
// the live catalog. Names that no longer resolve are skipped, never fatal:
// catalog edits mid-run degrade the rotation, they do not break it.
func (c *Crafter) runSteps(recipe catalog.Recipe) {
	for _, name := range recipe.Steps {
		action, ok := c.store.Action(name)
		if !ok {
			c.notifier.Log(SeverityWarning, "skipping unknown action %q", name)
			continue
		}
		if !action.Configured() {
			continue
		}
		if res := c.dispatcher.Execute(action); res.Failed() > 0 {
			c.notifier.Log(SeverityWarning, "%d key(s) of %q failed to send", res.Failed(), name)
		}
	}
}

// runFixed executes a fixed-role action, skipping unconfigured slots.
func (c *Crafter) runFixed(role catalog.Role) {
	action := c.store.Fixed(role)
	if !action.Configured() {
		return
	}
	c.dispatcher.Execute(action)
}

// abort ends the run on a fatal error. A stop requested by the user has
// already been reported, so it passes through quietly.
func (c *Crafter) abort(err error) {
	if errors.Is(err, errStopped) {
		return
	}
	c.notifier.Log(SeverityError, "%v", err)
	c.finish()
}

// finish forces the state machine back to stopped, notifying only if this is
// news.
func (c *Crafter) finish() {
	c.mu.Lock()
	changed := c.state != StateStopped
	c.state = StateStopped
	c.mu.Unlock()

	c.pause.Open()
	if changed {
		c.notifier.StateChanged(StateStopped)
	}
}
