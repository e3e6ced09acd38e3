// Package patch applies the literal find-and-replace edits declared by
// content packages to a clone of the published content snapshot.
//
// Contributors register ahead of time. ApplyAll clones the snapshot, walks
// the registrations in order, applies each contributor's script, style and
// passage edits against the clone, and publishes the clone once every
// contributor has been processed. A contributor whose specification is
// malformed, or whose processing faults, is reported and skipped; a missing
// target or search text skips only that edit.
package patch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/modpatch/internal/content"
	"github.com/kingrea/modpatch/internal/contracts"
	"github.com/kingrea/modpatch/internal/module"
)

const (
	// ModName is the engine name packages declare in their addon list.
	ModName = "ReplacePatcher"
	// AddonName is the integration name packages declare in their addon list.
	AddonName = "ReplacePatcherAddon"

	logPrefix = ModName
)

var (
	ErrTargetNotFound   = errors.New("patch: target not found")
	ErrMatchNotFound    = errors.New("patch: search text not found")
	ErrCycleInFlight    = errors.New("patch: apply cycle already in progress")
	ErrContributorFault = errors.New("patch: contributor processing fault")
)

// Logger is the leveled diagnostic sink. Messages are advisory only.
type Logger interface {
	Log(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any)   {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// ContentStore supplies the published snapshot and accepts its replacement.
type ContentStore interface {
	Current() (*content.Snapshot, error)
	Publish(next, prev *content.Snapshot) error
}

// Registration associates a contributor with the package its edits come from.
type Registration struct {
	ID      string
	Source  string
	Addon   string
	Package module.Package
}

// Option customizes an Engine during construction.
type Option func(*Engine)

// WithLogger sets the diagnostic sink.
func WithLogger(log Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock overrides the clock used for report timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithCycleIDs overrides how apply cycles are identified.
func WithCycleIDs(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}

// Engine owns the registrations and runs apply cycles against a store.
type Engine struct {
	store ContentStore
	log   Logger
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	regs  []Registration
	index map[string]int
	last  *Report

	running atomic.Bool
}

// New builds an engine over store.
func New(store ContentStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   nopLogger{},
		now:   time.Now,
		newID: uuid.NewString,
		index: map[string]int{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init installs the engine as the replace addon hook.
func (e *Engine) Init(reg *module.Registry) error {
	return reg.Register(ModName, AddonName, e)
}

// Register records a contributor. Registering the same id again replaces
// the earlier entry but keeps its place in the order. The specification is
// not read until ApplyAll.
func (e *Engine) Register(id, source string, pkg module.Package) error {
	return e.register(Registration{ID: id, Source: source, Package: pkg})
}

// RegisterMod implements module.Hook. The package name is the contributor id.
func (e *Engine) RegisterMod(_ context.Context, addonName string, pkg module.Package, source string) error {
	if pkg == nil {
		return fmt.Errorf("patch: package is required")
	}
	return e.register(Registration{ID: pkg.Name(), Source: source, Addon: addonName, Package: pkg})
}

func (e *Engine) register(reg Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("patch: contributor id is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, exists := e.index[reg.ID]; exists {
		e.regs[idx] = reg
		return nil
	}
	e.index[reg.ID] = len(e.regs)
	e.regs = append(e.regs, reg)
	return nil
}

// Registrations returns the registered contributors in apply order.
func (e *Engine) Registrations() []Registration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Registration(nil), e.regs...)
}

// AfterPatch implements module.Hook by running one apply cycle.
func (e *Engine) AfterPatch(ctx context.Context) error {
	_, err := e.ApplyAll(ctx)
	return err
}

// LastReport returns the report of the most recent published cycle.
func (e *Engine) LastReport() *Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// ApplyAll runs one apply cycle. ctx is only consulted before the snapshot is
// cloned; once edits start the cycle runs to completion. Failures to read or
// clone the snapshot, or to publish the result, are returned and nothing is
// published. Per-edit and per-contributor failures are recorded in the
// report instead.
func (e *Engine) ApplyAll(ctx context.Context) (*Report, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInFlight
	}
	defer e.running.Store(false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := &Report{CycleID: e.newID(), StartedAt: e.now()}

	prev, err := e.store.Current()
	if err != nil {
		e.log.Error("%s: read current snapshot: %v", logPrefix, err)
		return nil, fmt.Errorf("patch: current snapshot: %w", err)
	}
	next, err := prev.Clone()
	if err != nil {
		e.log.Error("%s: %v", logPrefix, err)
		return nil, fmt.Errorf("patch: %w", err)
	}
	report.Before = prev.Fingerprint()

	for _, reg := range e.Registrations() {
		report.Contributors = append(report.Contributors, e.applyContributor(reg, next))
	}

	if err := e.store.Publish(next, prev); err != nil {
		e.log.Error("%s: publish: %v", logPrefix, err)
		return nil, fmt.Errorf("patch: publish: %w", err)
	}
	report.After = next.Fingerprint()
	report.Changes = content.Changes(prev, next)
	report.FinishedAt = e.now()

	e.mu.Lock()
	e.last = report
	e.mu.Unlock()
	return report, nil
}

func (e *Engine) applyContributor(reg Registration, snap *content.Snapshot) (result ContributorResult) {
	result = ContributorResult{ID: reg.ID, Source: reg.Source}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrContributorFault, r)
			e.log.Error("%s: %s %v", logPrefix, reg.ID, err)
			result.Status = ContributorFailed
			result.Err = err.Error()
		}
	}()

	addon, ok := module.FindAddon(reg.Package, ModName, AddonName)
	if !ok {
		e.log.Error("%s: %s declares no %s/%s addon entry; skipped", logPrefix, reg.ID, ModName, AddonName)
		result.Status = ContributorSkipped
		return result
	}
	spec, err := contracts.DecodeSpec(addon.Params)
	if err != nil {
		e.log.Error("%s: invalid params p: %s %s: %v", logPrefix, reg.ID, renderParams(addon.Params), err)
		result.Status = ContributorRejected
		result.Err = err.Error()
		return result
	}

	for _, kind := range content.Kinds {
		group := snap.Group(kind)
		for _, edit := range spec.Edits(kind) {
			result.Edits = append(result.Edits, e.applyEdit(reg.ID, group, edit))
		}
	}
	result.Status = summarize(result.Edits)
	e.log.Log("%s: done: %s", logPrefix, reg.ID)
	return result
}

func renderParams(params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return string(data)
}
