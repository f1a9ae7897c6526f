package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SolarShards/XIVAutoCrafter/internal/catalog"
	"github.com/SolarShards/XIVAutoCrafter/internal/engine/input"
)

// fakeDetector reports a fixed answer.
type fakeDetector struct {
	mu   sync.Mutex
	open bool
}

func (d *fakeDetector) CraftingUIOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// fakeDispatcher records dispatched shortcuts in order. When blocking, every
// Execute waits for the release channel; the first Execute signals started.
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (d *fakeDispatcher) Execute(a catalog.Action) input.Result {
	if d.started != nil {
		d.once.Do(func() { close(d.started) })
	}
	if d.release != nil {
		<-d.release
	}
	d.mu.Lock()
	d.calls = append(d.calls, a.Shortcut)
	d.mu.Unlock()
	return input.Result{}
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *fakeDispatcher) shortcuts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// collectingNotifier captures notifications for assertions.
type collectingNotifier struct {
	mu       sync.Mutex
	states   []State
	progress []float64
	logs     []string
}

func (n *collectingNotifier) StateChanged(s State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, s)
}

func (n *collectingNotifier) Progress(f float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, f)
}

func (n *collectingNotifier) Log(sev Severity, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logs = append(n.logs, sev.String()+" "+fmt.Sprintf(format, args...))
}

func (n *collectingNotifier) stateList() []State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]State(nil), n.states...)
}

func (n *collectingNotifier) progressList() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]float64(nil), n.progress...)
}

func (n *collectingNotifier) hasLog(sev Severity, substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, l := range n.logs {
		if strings.HasPrefix(l, sev.String()+" ") && strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func rotationStore(t *testing.T) *catalog.Store {
	t.Helper()
	store := catalog.NewStore()
	if !store.AddAction("Synthesis", catalog.Action{Shortcut: "Ctrl+F1"}) {
		t.Fatal("add Synthesis")
	}
	if !store.AddAction("Byregot's Blessing", catalog.Action{Shortcut: "Ctrl+F2"}) {
		t.Fatal("add Byregot's Blessing")
	}
	if !store.AddRecipe("Collectable", catalog.Recipe{
		Steps: []string{"Synthesis", "Synthesis", "Byregot's Blessing"},
	}) {
		t.Fatal("add Collectable")
	}
	return store
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never reached")
}

func TestRunDispatchesStepsInOrder(t *testing.T) {
	store := rotationStore(t)
	disp := &fakeDispatcher{}
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, notifier)

	if err := c.Start(3, "Collectable"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	if got := c.State(); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}

	want := []string{
		"Ctrl+F1", "Ctrl+F1", "Ctrl+F2",
		"Ctrl+F1", "Ctrl+F1", "Ctrl+F2",
		"Ctrl+F1", "Ctrl+F1", "Ctrl+F2",
	}
	got := disp.shortcuts()
	if len(got) != len(want) {
		t.Fatalf("dispatched %d actions, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got[i], want[i])
		}
	}

	progress := notifier.progressList()
	wantProgress := []float64{1.0 / 3, 2.0 / 3, 1}
	if len(progress) != len(wantProgress) {
		t.Fatalf("got %d progress updates, want %d", len(progress), len(wantProgress))
	}
	for i := range wantProgress {
		if math.Abs(progress[i]-wantProgress[i]) > 1e-9 {
			t.Fatalf("progress %d = %f, want %f", i, progress[i], wantProgress[i])
		}
	}

	states := notifier.stateList()
	if len(states) != 2 || states[0] != StateRunning || states[1] != StateStopped {
		t.Fatalf("state transitions = %v, want [running stopped]", states)
	}
}

func TestStartRejectsInvalidQuantity(t *testing.T) {
	store := rotationStore(t)
	store.AddRecipe("X", catalog.Recipe{Steps: []string{"Synthesis"}})
	disp := &fakeDispatcher{}
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, notifier)

	err := c.Start(0, "X")
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
	if c.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", c.State())
	}
	if disp.count() != 0 {
		t.Fatalf("dispatched %d actions, want 0", disp.count())
	}
	if !notifier.hasLog(SeverityError, "quantity") {
		t.Fatal("expected an ERROR report about the quantity")
	}
}

func TestStartRejectsUnknownRecipe(t *testing.T) {
	store := rotationStore(t)
	disp := &fakeDispatcher{}
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, notifier)

	err := c.Start(5, "Unknown")
	if !errors.Is(err, ErrUnknownRecipe) {
		t.Fatalf("err = %v, want ErrUnknownRecipe", err)
	}
	if c.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", c.State())
	}
	if disp.count() != 0 {
		t.Fatalf("dispatched %d actions, want 0", disp.count())
	}
}

func TestStartRejectsMissingBuffConfiguration(t *testing.T) {
	store := rotationStore(t)
	store.AddRecipe("Buffed", catalog.Recipe{
		Steps:   []string{"Synthesis"},
		UseFood: true,
	})
	c := NewCrafter(store, &fakeDetector{open: true}, &fakeDispatcher{}, &collectingNotifier{})

	err := c.Start(1, "Buffed")
	if !errors.Is(err, ErrMissingBuffConfiguration) {
		t.Fatalf("err = %v, want ErrMissingBuffConfiguration", err)
	}
	if c.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", c.State())
	}
}

func TestFoodAppliedBeforeFirstItem(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleFood, "Ctrl+0")
	store.AddRecipe("Buffed", catalog.Recipe{
		Steps:   []string{"Synthesis"},
		UseFood: true,
	})
	disp := &fakeDispatcher{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{})

	if err := c.Start(2, "Buffed"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	// Food once, up front; the second cycle reuses the standing buff.
	want := []string{"Ctrl+0", "Ctrl+F1", "Ctrl+F1"}
	got := disp.shortcuts()
	if len(got) != len(want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExpiredFoodIsReapplied(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleFood, "Ctrl+0")
	store.AddRecipe("Buffed", catalog.Recipe{
		Steps:   []string{"Synthesis"},
		UseFood: true,
	})
	disp := &fakeDispatcher{}

	// Every clock read jumps 31 minutes, so the food buff has always expired
	// by the next cycle's due check.
	now := time.Now()
	clock := func() time.Time {
		now = now.Add(31 * time.Minute)
		return now
	}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{}, WithClock(clock))

	if err := c.Start(2, "Buffed"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	want := []string{"Ctrl+0", "Ctrl+F1", "Ctrl+0", "Ctrl+F1"}
	got := disp.shortcuts()
	if len(got) != len(want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDanglingStepIsSkipped(t *testing.T) {
	store := rotationStore(t)
	store.AddRecipe("Dangling", catalog.Recipe{
		Steps: []string{"Synthesis", "Deleted action", "Byregot's Blessing"},
	})
	disp := &fakeDispatcher{}
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, notifier)

	if err := c.Start(1, "Dangling"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	want := []string{"Ctrl+F1", "Ctrl+F2"}
	got := disp.shortcuts()
	if len(got) != len(want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	if !notifier.hasLog(SeverityWarning, "Deleted action") {
		t.Fatal("expected a WARNING about the dangling step")
	}
}

func TestStartIgnoredWhileActive(t *testing.T) {
	store := rotationStore(t)
	disp := newBlockingDispatcher()
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, notifier)

	if err := c.Start(1, "Collectable"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-disp.started

	if err := c.Start(5, "Collectable"); err != nil {
		t.Fatalf("second start should be a silent no-op, got %v", err)
	}
	if got := c.State(); got != StateRunning {
		t.Fatalf("state = %v, want running", got)
	}

	close(disp.release)
	c.Wait()

	// Exactly one run was scheduled.
	running := 0
	for _, s := range notifier.stateList() {
		if s == StateRunning {
			running++
		}
	}
	if running != 1 {
		t.Fatalf("observed %d transitions to running, want 1", running)
	}
	if disp.count() != 3 {
		t.Fatalf("dispatched %d actions, want 3", disp.count())
	}
}

func TestPauseTakesEffectAtCycleBoundary(t *testing.T) {
	store := rotationStore(t)
	disp := newBlockingDispatcher()
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{})

	if err := c.Start(2, "Collectable"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-disp.started
	c.Pause()
	close(disp.release)

	// The in-flight cycle finishes all three steps before the pause bites.
	waitUntil(t, func() bool { return disp.count() == 3 })
	time.Sleep(20 * time.Millisecond)
	if got := disp.count(); got != 3 {
		t.Fatalf("dispatched %d actions while paused, want 3", got)
	}
	if got := c.State(); got != StatePaused {
		t.Fatalf("state = %v, want paused", got)
	}

	c.Resume()
	c.Wait()
	if got := disp.count(); got != 6 {
		t.Fatalf("dispatched %d actions, want 6", got)
	}
	if got := c.State(); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestPauseAndResumeAreNoOpsOutsideTheirStates(t *testing.T) {
	store := rotationStore(t)
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, &fakeDispatcher{}, notifier)

	c.Pause()
	c.Resume()
	c.Stop()
	if got := c.State(); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
	if len(notifier.stateList()) != 0 {
		t.Fatalf("no-op transitions notified: %v", notifier.stateList())
	}
}

func TestStopEndsRunAndResetsProgress(t *testing.T) {
	store := rotationStore(t)
	disp := newBlockingDispatcher()
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, notifier)

	if err := c.Start(100, "Collectable"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-disp.started
	c.Stop()
	close(disp.release)
	c.Wait()

	if got := c.State(); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
	// Stop is observed at the next cycle boundary: the current cycle's step
	// sequence completes, nothing more.
	if got := disp.count(); got != 3 {
		t.Fatalf("dispatched %d actions after stop, want 3", got)
	}

	// The next run starts from zero progress.
	if err := c.Start(1, "Collectable"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	c.Wait()
	progress := notifier.progressList()
	if len(progress) == 0 || progress[len(progress)-1] != 1 {
		t.Fatalf("restarted run progress = %v, want final 1", progress)
	}
}

func assertDispatchOrder(t *testing.T, disp *fakeDispatcher, want []string) {
	t.Helper()
	got := disp.shortcuts()
	if len(got) != len(want) {
		t.Fatalf("dispatched %d actions, want %d:\n got %v\nwant %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (full order %v)", i, got[i], want[i], got)
		}
	}
}

func TestConfirmChainAndHQSelectionOnFirstItemOnly(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleConfirm, "Numpad0")
	store.SetFixedShortcut(catalog.RoleUp, "Up")
	store.SetFixedShortcut(catalog.RoleDown, "Down")
	store.SetFixedShortcut(catalog.RoleRight, "Right")
	store.AddRecipe("HQ", catalog.Recipe{
		Steps:            []string{"Synthesis"},
		UseHQIngredients: true,
	})
	disp := &fakeDispatcher{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{})

	if err := c.Start(2, "HQ"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	assertDispatchOrder(t, disp, []string{
		// Item 1: three confirms, then the HQ ingredient selection.
		"Numpad0", "Numpad0", "Numpad0",
		"Up", "Right", "Numpad0", "Down", "Numpad0",
		"Ctrl+F1",
		// Item 2: the materials are already selected, confirms only.
		"Numpad0", "Numpad0", "Numpad0",
		"Ctrl+F1",
	})
}

func TestBuffReapplicationChoreography(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleConfirm, "Numpad0")
	store.SetFixedShortcut(catalog.RoleCancel, "Esc")
	store.SetFixedShortcut(catalog.RoleFood, "Ctrl+0")
	store.SetFixedShortcut(catalog.RoleRecipeBook, "N")
	store.SetFixedShortcut(catalog.RoleUp, "Up")
	store.SetFixedShortcut(catalog.RoleDown, "Down")
	store.SetFixedShortcut(catalog.RoleRight, "Right")
	store.AddRecipe("Buffed HQ", catalog.Recipe{
		Steps:            []string{"Synthesis"},
		UseFood:          true,
		UseHQIngredients: true,
	})
	disp := &fakeDispatcher{}

	// Every clock read jumps 31 minutes, so the food buff expires before each
	// cycle's due check and the reapplication runs every item.
	now := time.Now()
	clock := func() time.Time {
		now = now.Add(31 * time.Minute)
		return now
	}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{}, WithClock(clock))

	if err := c.Start(2, "Buffed HQ"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	// Each cycle: close the dialogs, eat, reopen the log, confirm chain, then
	// the HQ selection again since the reapplication reset the craft setup.
	cycle := []string{
		"Esc", "Esc", "Ctrl+0", "N",
		"Numpad0", "Numpad0", "Numpad0",
		"Up", "Right", "Numpad0", "Down", "Numpad0",
		"Ctrl+F1",
	}
	assertDispatchOrder(t, disp, append(append([]string{}, cycle...), cycle...))
}

func TestStandingBuffSkipsHQSelectionOnSecondItem(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleCancel, "Esc")
	store.SetFixedShortcut(catalog.RoleFood, "Ctrl+0")
	store.SetFixedShortcut(catalog.RoleRecipeBook, "N")
	store.SetFixedShortcut(catalog.RoleUp, "Up")
	store.SetFixedShortcut(catalog.RoleDown, "Down")
	store.SetFixedShortcut(catalog.RoleRight, "Right")
	store.SetFixedShortcut(catalog.RoleConfirm, "Numpad0")
	store.AddRecipe("Buffed HQ", catalog.Recipe{
		Steps:            []string{"Synthesis"},
		UseFood:          true,
		UseHQIngredients: true,
	})
	disp := &fakeDispatcher{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{})

	if err := c.Start(2, "Buffed HQ"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	assertDispatchOrder(t, disp, []string{
		// Item 1: first application of the food, then the full setup.
		"Esc", "Esc", "Ctrl+0", "N",
		"Numpad0", "Numpad0", "Numpad0",
		"Up", "Right", "Numpad0", "Down", "Numpad0",
		"Ctrl+F1",
		// Item 2: buff still up, craft setup untouched.
		"Numpad0", "Numpad0", "Numpad0",
		"Ctrl+F1",
	})
}

func TestBuffTimersResetBetweenRuns(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleFood, "Ctrl+0")
	store.AddRecipe("Buffed", catalog.Recipe{
		Steps:   []string{"Synthesis"},
		UseFood: true,
	})
	disp := &fakeDispatcher{}
	c := NewCrafter(store, &fakeDetector{open: true}, disp, &collectingNotifier{})

	for run := 0; run < 2; run++ {
		if err := c.Start(1, "Buffed"); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		c.Wait()
	}

	// A fresh run re-applies the food even though the previous run just did.
	assertDispatchOrder(t, disp, []string{
		"Ctrl+0", "Ctrl+F1",
		"Ctrl+0", "Ctrl+F1",
	})
}

func TestUIDetectionTimeoutIsFatal(t *testing.T) {
	store := rotationStore(t)
	store.SetFixedShortcut(catalog.RoleRecipeBook, "N")
	disp := &fakeDispatcher{}
	notifier := &collectingNotifier{}
	c := NewCrafter(store, &fakeDetector{open: false}, disp, notifier,
		WithUIPollInterval(time.Millisecond),
		WithUIDetectAttempts(2),
	)

	if err := c.Start(1, "Collectable"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Wait()

	if got := c.State(); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
	// The recipe book is re-pressed once per attempt; no rotation steps ran.
	want := []string{"N", "N"}
	got := disp.shortcuts()
	if len(got) != len(want) || got[0] != "N" || got[1] != "N" {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	if !notifier.hasLog(SeverityError, "crafting log") {
		t.Fatal("expected an ERROR report about the crafting log")
	}
}

func TestStopInterruptsUIWait(t *testing.T) {
	store := rotationStore(t)
	c := NewCrafter(store, &fakeDetector{open: false}, &fakeDispatcher{}, &collectingNotifier{},
		WithUIPollInterval(10*time.Millisecond),
	)

	if err := c.Start(1, "Collectable"); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	done := make(chan struct{})
	go func() { c.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not observe stop inside the wait-for-UI loop")
	}
}
