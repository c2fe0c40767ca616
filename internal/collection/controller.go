// Package collection keeps a paginated, filtered, server-backed list in sync
// with the server while the user browses and edits it.
//
// A Controller owns one collection (contacts, activities). Intents such as
// LoadFresh, LoadMore and Create start gateway calls in the background and
// return immediately; completions are applied under the controller's lock
// and announced through the OnChange callback. Every load is tagged with a
// sequence number so a slow response to a superseded request is dropped
// instead of overwriting newer data.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrReadOnly is returned by mutation intents on a collection with no Mutator.
	ErrReadOnly = errors.New("collection is read-only")
	// ErrNoExporter is returned by Export on a collection with no Exporter.
	ErrNoExporter = errors.New("collection does not support export")
	// ErrClosed is returned by intents issued after Close.
	ErrClosed = errors.New("collection is closed")
)

// Source fetches one page of a collection. page is 1-based.
type Source[T any] interface {
	List(ctx context.Context, f Filter, page, pageSize int) (Page[T], error)
}

// Mutator writes to a collection on the server. A is the attribute set a
// create or update carries.
type Mutator[T any, A any] interface {
	Create(ctx context.Context, attrs A) (T, error)
	Update(ctx context.Context, id string, attrs A) (T, error)
	Delete(ctx context.Context, id string) error
}

// Exporter produces a server-side export of the whole collection.
type Exporter interface {
	Export(ctx context.Context) ([]byte, error)
}

// Config configures a Controller. Source and PageSize are required.
type Config[T Item, A any] struct {
	Name     string // used in log lines
	Source   Source[T]
	Mutator  Mutator[T, A] // nil for read-only collections
	Exporter Exporter      // nil when export is unsupported
	PageSize int

	// Fields lists the filter keys OnFilterFieldChange accepts. Empty means
	// all keys.
	Fields []string

	// Debounce is the quiet interval applied to search edits. Zero means
	// DefaultDebounce.
	Debounce time.Duration
	Clock    clockwork.Clock
	Logger   *slog.Logger

	// OnChange is called with a fresh snapshot after every state change.
	// It is never called with the controller's lock held.
	OnChange func(Snapshot[T])
}

// Snapshot is an immutable view of a collection.
type Snapshot[T any] struct {
	Items      []T
	TotalCount int
	HasMore    bool
	Page       int
	PageSize   int
	State      LoadState
	Draft      Filter // what the user has typed or selected
	Applied    Filter // the filter the cached items were fetched with
	Err        error  // the error behind StateError, if any

	// Version increases with every change; consumers receiving snapshots
	// out of order keep the highest.
	Version uint64
}

type opKind int

const (
	opLoad opKind = iota
	opMutate
)

type op struct {
	kind   opKind
	cancel context.CancelFunc
}

// Controller is the sync state machine for one collection.
type Controller[T Item, A any] struct {
	cfg      Config[T, A]
	logger   *slog.Logger
	fields   map[string]bool
	debounce *debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	settled   *sync.Cond // signaled when inflight drops to zero
	inflight  int
	cache     *Cache[T]
	draft     Filter
	effective Filter // draft with the search field debounced
	requested Filter // filter of the most recent fresh load
	applied   Filter
	nextOp    uint64
	active    map[uint64]op
	err       error
	version   uint64
	closed    bool
}

// New creates a controller. No request is made until Start or an intent is
// called.
func New[T Item, A any](cfg Config[T, A]) (*Controller[T, A], error) {
	if cfg.Source == nil {
		return nil, errors.New("collection: Source is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("collection: invalid page size %d", cfg.PageSize)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name != "" {
		logger = logger.With("collection", cfg.Name)
	}

	c := &Controller[T, A]{
		cfg:    cfg,
		logger: logger,
		cache:  NewCache[T](),
		active: make(map[uint64]op),
	}
	if len(cfg.Fields) > 0 {
		c.fields = make(map[string]bool, len(cfg.Fields))
		for _, f := range cfg.Fields {
			c.fields[f] = true
		}
	}
	c.settled = sync.NewCond(&c.mu)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.debounce = newDebouncer(cfg.Clock, cfg.Debounce, c.searchSettled)
	return c, nil
}

// Start issues the initial fresh load with the current filter.
func (c *Controller[T, A]) Start() error {
	c.mu.Lock()
	f := c.effective
	c.mu.Unlock()
	return c.LoadFresh(f)
}

// LoadFresh discards the cache and fetches page 1 with filter f. Any load
// still in flight is superseded and its result will be ignored.
func (c *Controller[T, A]) LoadFresh(f Filter) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.startLoadLocked(f, 1, true)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// LoadMore fetches the next page with the applied filter. It does nothing
// when everything is already loaded or a request is in flight.
func (c *Controller[T, A]) LoadMore() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.cache.HasMore() || len(c.active) > 0 {
		c.mu.Unlock()
		return nil
	}
	c.startLoadLocked(c.applied, c.cache.Page()+1, false)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// startLoadLocked supersedes every in-flight load and starts a new one.
// Superseded requests are canceled and whatever they return is ignored.
func (c *Controller[T, A]) startLoadLocked(f Filter, page int, fresh bool) {
	for id, o := range c.active {
		if o.kind == opLoad {
			o.cancel()
			delete(c.active, id)
		}
	}
	if fresh {
		c.requested = f
	}
	id, ctx := c.beginLocked(opLoad)
	pageSize := c.cfg.PageSize

	c.inflight++
	go func() {
		defer c.done()
		p, err := c.cfg.Source.List(ctx, f, page, pageSize)
		c.finishLoad(id, f, page, fresh, p, err)
	}()
}

func (c *Controller[T, A]) finishLoad(id uint64, f Filter, page int, fresh bool, p Page[T], err error) {
	c.mu.Lock()
	if !c.endLocked(id) {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded load", "page", page, "op", id)
		return
	}
	switch {
	case err != nil:
		c.err = err
		c.logger.Warn("load failed", "page", page, "err", err)
	case fresh:
		c.cache.Replace(p)
		c.applied = f
	default:
		c.cache.Append(p, page)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// beginLocked registers a new operation and clears any displayed error.
func (c *Controller[T, A]) beginLocked(kind opKind) (uint64, context.Context) {
	c.nextOp++
	id := c.nextOp
	ctx, cancel := context.WithCancel(c.ctx)
	c.active[id] = op{kind: kind, cancel: cancel}
	c.err = nil
	return id, ctx
}

// endLocked unregisters an operation and reports whether its result should
// still be applied.
func (c *Controller[T, A]) endLocked(id uint64) bool {
	if c.closed {
		return false
	}
	o, ok := c.active[id]
	if !ok {
		return false
	}
	o.cancel()
	delete(c.active, id)
	return true
}

// --- local patches ---

// ApplyLocalCreate puts an item created elsewhere at the front of the list.
func (c *Controller[T, A]) ApplyLocalCreate(item T) {
	c.patch(func(cache *Cache[T]) { cache.Prepend(item) })
}

// ApplyLocalUpdate replaces the cached item with the same id. The id is taken
// from item itself. Items that are not cached are ignored.
func (c *Controller[T, A]) ApplyLocalUpdate(item T) {
	c.patch(func(cache *Cache[T]) { cache.ReplaceByID(item) })
}

// ApplyLocalDelete removes the cached item with the given id, if present.
func (c *Controller[T, A]) ApplyLocalDelete(id string) {
	c.patch(func(cache *Cache[T]) { cache.RemoveByID(id) })
}

func (c *Controller[T, A]) patch(fn func(*Cache[T])) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fn(c.cache)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// --- mutations ---

// Create asks the server to create an item and prepends the result.
func (c *Controller[T, A]) Create(attrs A) error {
	return c.mutate("create", func(ctx context.Context, m Mutator[T, A]) (func(*Cache[T]), error) {
		item, err := m.Create(ctx, attrs)
		if err != nil {
			return nil, err
		}
		return func(cache *Cache[T]) { cache.Prepend(item) }, nil
	})
}

// Update asks the server to update item id and replaces the cached copy.
func (c *Controller[T, A]) Update(id string, attrs A) error {
	return c.mutate("update", func(ctx context.Context, m Mutator[T, A]) (func(*Cache[T]), error) {
		item, err := m.Update(ctx, id, attrs)
		if err != nil {
			return nil, err
		}
		return func(cache *Cache[T]) { cache.ReplaceByID(item) }, nil
	})
}

// Delete asks the server to delete item id and drops it from the cache.
func (c *Controller[T, A]) Delete(id string) error {
	return c.mutate("delete", func(ctx context.Context, m Mutator[T, A]) (func(*Cache[T]), error) {
		if err := m.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(cache *Cache[T]) { cache.RemoveByID(id) }, nil
	})
}

type mutation[T Item, A any] func(ctx context.Context, m Mutator[T, A]) (func(*Cache[T]), error)

func (c *Controller[T, A]) mutate(name string, call mutation[T, A]) error {
	if c.cfg.Mutator == nil {
		return ErrReadOnly
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	id, ctx := c.beginLocked(opMutate)
	snap := c.snapshotLocked()
	c.inflight++
	c.mu.Unlock()
	c.notify(snap)

	go func() {
		defer c.done()
		apply, err := call(ctx, c.cfg.Mutator)

		c.mu.Lock()
		if !c.endLocked(id) {
			c.mu.Unlock()
			return
		}
		if err != nil {
			c.err = err
			c.logger.Warn(name+" failed", "err", err)
		} else {
			apply(c.cache)
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
	}()
	return nil
}

// Export runs the server-side export synchronously. A failure is also
// surfaced through the collection's error state.
func (c *Controller[T, A]) Export(ctx context.Context) ([]byte, error) {
	if c.cfg.Exporter == nil {
		return nil, ErrNoExporter
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.err = nil
	c.mu.Unlock()

	data, err := c.cfg.Exporter.Export(ctx)
	if err != nil {
		c.mu.Lock()
		c.err = err
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return nil, err
	}
	return data, nil
}

// --- filters ---

// OnFilterFieldChange records a filter edit. Search edits take effect after
// the debounce interval; other fields take effect immediately. A fresh load
// is issued whenever the effective filter differs from the last one
// requested.
func (c *Controller[T, A]) OnFilterFieldChange(key, value string) error {
	if c.fields != nil && !c.fields[key] {
		return fmt.Errorf("%w %q", ErrUnknownField, key)
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	draft, err := c.draft.With(key, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.draft = draft
	if key == FieldSearch {
		c.debounce.Trigger(value)
	} else {
		c.effective, _ = c.effective.With(key, value)
		c.reloadIfChangedLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// SubmitSearch applies the drafted search text without waiting for the
// debounce interval. It always issues a fresh load, so submitting the same
// search again retries it.
func (c *Controller[T, A]) SubmitSearch() error {
	c.debounce.Stop()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.effective.Search = c.draft.Search
	c.startLoadLocked(c.effective, 1, true)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

func (c *Controller[T, A]) searchSettled(value string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.effective.Search = value
	if !c.reloadIfChangedLocked() {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller[T, A]) reloadIfChangedLocked() bool {
	if c.effective == c.requested {
		return false
	}
	c.startLoadLocked(c.effective, 1, true)
	return true
}

// SearchPending reports whether a search edit is waiting out the debounce.
func (c *Controller[T, A]) SearchPending() bool {
	return c.debounce.Pending()
}

// --- state ---

// DismissError clears the displayed error without retrying.
func (c *Controller[T, A]) DismissError() {
	c.mu.Lock()
	if c.err == nil {
		c.mu.Unlock()
		return
	}
	c.err = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Snapshot returns the current state.
func (c *Controller[T, A]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T, A]) snapshotLocked() Snapshot[T] {
	c.version++
	return Snapshot[T]{
		Items:      c.cache.Items(),
		TotalCount: c.cache.Total(),
		HasMore:    c.cache.HasMore(),
		Page:       c.cache.Page(),
		PageSize:   c.cfg.PageSize,
		State:      c.stateLocked(),
		Draft:      c.draft,
		Applied:    c.applied,
		Err:        c.err,
		Version:    c.version,
	}
}

func (c *Controller[T, A]) stateLocked() LoadState {
	switch {
	case len(c.active) > 0:
		return Loading()
	case c.err != nil:
		return Failed(ErrorMessage(c.err))
	default:
		return Idle()
	}
}

func (c *Controller[T, A]) notify(s Snapshot[T]) {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(s)
	}
}

// Wait blocks until no gateway call is in flight. Calls started while
// waiting, such as a debounced search firing, are waited for too; a search
// still inside its debounce window is not.
func (c *Controller[T, A]) Wait() {
	c.mu.Lock()
	for c.inflight > 0 {
		c.settled.Wait()
	}
	c.mu.Unlock()
}

// done marks one background call as finished.
func (c *Controller[T, A]) done() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.settled.Broadcast()
	}
	c.mu.Unlock()
}

// Close stops the controller. In-flight calls are canceled and their
// completions discarded; later intents return ErrClosed.
func (c *Controller[T, A]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, o := range c.active {
		o.cancel()
	}
	clear(c.active)
	c.mu.Unlock()

	c.debounce.Stop()
	c.cancel()
}

// ErrorMessage renders err for display, preferring a UserMessage method
// anywhere in its chain.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
