// Package session serializes every editing command for one mind map behind a
// single mutex and publishes the resulting events to observers.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmapx/application/ports"
	"mindmapx/domain/config"
	"mindmapx/domain/core/aggregates"
	"mindmapx/domain/core/valueobjects"
	"mindmapx/domain/events"
	"mindmapx/domain/suggestions"
	"mindmapx/domain/viewport"
	pkgerrors "mindmapx/pkg/errors"
)

// Phase is the session lifecycle stage.
type Phase string

const (
	PhaseStart    Phase = "start"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// CodeNotPlaying marks edits rejected outside the playing phase
const CodeNotPlaying = "SESSION_NOT_PLAYING"

// Repository stores live sessions by id
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Count() int
}

// Factory builds a fresh session for id
type Factory func(id string) *Session

// Session owns one mind map with its viewport, interaction state and colors.
type Session struct {
	mu sync.Mutex
	// deliver is taken before mu is released and held while publishing,
	// so events leave in commit order
	deliver sync.Mutex

	id         string
	cfg        *config.DomainConfig
	store      *aggregates.MindMap
	view       *viewport.Transform
	controller *Controller
	colors     ColorScheme
	phase      Phase

	publisher ports.EventPublisher
	logger    *zap.Logger
	clock     func() time.Time

	createdAt  time.Time
	lastActive time.Time
	pending    []events.DomainEvent
}

// Option configures a Session
type Option func(*sessionOptions)

type sessionOptions struct {
	mapOpts   []aggregates.Option
	clock     func() time.Time
	publisher ports.EventPublisher
	engine    *suggestions.Engine
}

// WithMapOptions forwards options to the underlying mind map
func WithMapOptions(opts ...aggregates.Option) Option {
	return func(o *sessionOptions) { o.mapOpts = append(o.mapOpts, opts...) }
}

// WithClock sets the clock used for timestamps and expiry
func WithClock(clock func() time.Time) Option {
	return func(o *sessionOptions) { o.clock = clock }
}

// WithPublisher sets where committed events are sent
func WithPublisher(p ports.EventPublisher) Option {
	return func(o *sessionOptions) { o.publisher = p }
}

// WithEngine sets the suggestion engine
func WithEngine(e *suggestions.Engine) Option {
	return func(o *sessionOptions) { o.engine = e }
}

// New creates a session in the start phase holding only the root idea
func New(id string, cfg *config.DomainConfig, logger *zap.Logger, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := sessionOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = suggestions.NewEngine()
	}

	colors := DefaultColorScheme(cfg)
	mapOpts := append([]aggregates.Option{aggregates.WithClock(o.clock)}, o.mapOpts...)
	store := aggregates.NewMindMap(aggregates.MapID(id), cfg, colors.Root, mapOpts...)
	view := viewport.NewTransform(cfg)

	ctrl := NewController(id, store, view, o.engine, cfg, logger)
	ctrl.clock = o.clock

	now := o.clock()
	return &Session{
		id:         id,
		cfg:        cfg,
		store:      store,
		view:       view,
		controller: ctrl,
		colors:     colors,
		phase:      PhaseStart,
		publisher:  o.publisher,
		logger:     logger,
		clock:      o.clock,
		createdAt:  now,
		lastActive: now,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// LastActive returns when the session last handled a command
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Phase returns the lifecycle stage
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start enters the playing phase from start. It reports whether the phase changed.
func (s *Session) Start(ctx context.Context) bool {
	var changed bool
	s.run(ctx, func() error {
		changed = s.transition(PhaseStart, PhasePlaying)
		return nil
	})
	return changed
}

// Finish ends editing. Only export and reset remain available afterwards.
func (s *Session) Finish(ctx context.Context) bool {
	var changed bool
	s.run(ctx, func() error {
		if changed = s.transition(PhasePlaying, PhaseFinished); changed {
			s.controller.Release()
		}
		return nil
	})
	return changed
}

// Reset restores the single root, the default zoom and the start phase
func (s *Session) Reset(ctx context.Context) {
	s.run(ctx, func() error {
		s.controller.Reset(s.colors.Root)
		if z := s.view.Zoom(); z != s.view.ResetZoom() {
			s.record(events.NewZoomChanged(s.id, s.view.Zoom(), s.clock()))
		}
		if s.phase != PhaseStart {
			s.record(events.NewPhaseChanged(s.id, string(s.phase), string(PhaseStart), s.clock()))
			s.phase = PhaseStart
		}
		return nil
	})
}

// SelectNode behaves as a click on the node
func (s *Session) SelectNode(ctx context.Context, id valueobjects.NodeID) {
	s.whilePlaying(ctx, func() { s.controller.ClickNode(id) })
}

// ClearSelection behaves as a click on empty canvas
func (s *Session) ClearSelection(ctx context.Context) {
	s.whilePlaying(ctx, s.controller.ClickEmptyCanvas)
}

// BeginDrag grabs a node under the pointer
func (s *Session) BeginDrag(ctx context.Context, id valueobjects.NodeID, ev PointerEvent) {
	s.whilePlaying(ctx, func() { s.controller.PointerDown(id, ev) })
}

// ContinueDrag moves the grabbed node
func (s *Session) ContinueDrag(ctx context.Context, ev PointerEvent) {
	s.whilePlaying(ctx, func() { s.controller.PointerMove(ev) })
}

// EndDrag releases the grabbed node; ok is false when nothing was dragged
func (s *Session) EndDrag(ctx context.Context) (res DragResult, ok bool) {
	s.whilePlaying(ctx, func() { res, ok = s.controller.PointerUp() })
	return res, ok
}

// LeaveCanvas ends a drag because the pointer left the canvas
func (s *Session) LeaveCanvas(ctx context.Context) (res DragResult, ok bool) {
	s.whilePlaying(ctx, func() { res, ok = s.controller.PointerLeave() })
	return res, ok
}

// AddChildNode attaches a child under the selected node
func (s *Session) AddChildNode(ctx context.Context, label valueobjects.Label, color valueobjects.Color) (valueobjects.NodeID, error) {
	var id valueobjects.NodeID
	err := s.run(ctx, func() error {
		if err := s.requirePlaying("add child"); err != nil {
			return err
		}
		var err error
		id, err = s.controller.AddChild(label, color)
		return err
	})
	return id, err
}

// EditNode changes a node's label and/or color. Unknown ids are ignored.
func (s *Session) EditNode(ctx context.Context, id valueobjects.NodeID, label *valueobjects.Label, color *valueobjects.Color) error {
	return s.run(ctx, func() error {
		if err := s.requirePlaying("edit"); err != nil {
			return err
		}
		return s.controller.EditNode(id, label, color)
	})
}

// SetZoom sets the zoom level, clamped
func (s *Session) SetZoom(ctx context.Context, level float64) float64 {
	return s.zoom(ctx, func() float64 { return s.view.SetZoom(level) })
}

// ZoomIn steps the zoom up
func (s *Session) ZoomIn(ctx context.Context) float64 {
	return s.zoom(ctx, s.view.ZoomIn)
}

// ZoomOut steps the zoom down
func (s *Session) ZoomOut(ctx context.Context) float64 {
	return s.zoom(ctx, s.view.ZoomOut)
}

// ResetZoom restores the default zoom
func (s *Session) ResetZoom(ctx context.Context) float64 {
	return s.zoom(ctx, s.view.ResetZoom)
}

func (s *Session) zoom(ctx context.Context, fn func() float64) float64 {
	var z float64
	s.run(ctx, func() error {
		before := s.view.Zoom()
		z = fn()
		if z != before {
			s.record(events.NewZoomChanged(s.id, z, s.clock()))
		}
		return nil
	})
	return z
}

// SetRoleColor changes a role color. The root role also recolors the root node.
func (s *Session) SetRoleColor(ctx context.Context, role Role, color valueobjects.Color) error {
	if color.IsZero() {
		return pkgerrors.NewValidationError("role color cannot be empty")
	}
	return s.run(ctx, func() error {
		s.colors = s.colors.With(role, color)
		if role == RoleRoot {
			if err := s.controller.EditNode(s.store.RootID(), nil, &color); err != nil {
				return err
			}
		}
		s.record(events.NewRoleColorChanged(s.id, string(role), color, s.clock()))
		return nil
	})
}

// Colors returns the current color scheme
func (s *Session) Colors() ColorScheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors
}

// Suggestions returns the suggestions shown for the selection
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Suggestions()
}

// ActiveSubscriptions reports unreleased drag subscriptions
func (s *Session) ActiveSubscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.ActiveSubscriptions()
}

// Capture copies everything a renderer needs at this instant
func (s *Session) Capture() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture()
}

func (s *Session) capture() Frame {
	f := Frame{
		SessionID:  s.id,
		Snapshot:   s.store.Snapshot(),
		Colors:     s.colors,
		Zoom:       s.view.Zoom(),
		Layout:     s.cfg.Layout,
		Phase:      s.phase,
		Version:    s.store.Version(),
		CapturedAt: s.clock(),
	}
	if id, ok := s.controller.Selected(); ok {
		f.Selected = &id
	}
	if id, _, ok := s.controller.Dragging(); ok {
		f.Dragging = &id
	}
	return f
}

// View returns a serializable picture of the session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentView()
}

func (s *Session) currentView() View {
	return newView(s.capture(), s.controller.Mode(), s.controller.Suggestions())
}

// Observe calls fn with the current view at a point where every earlier
// event has been delivered and no later one has been published yet.
// Observers registered inside fn therefore miss nothing and see nothing twice.
func (s *Session) Observe(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliver.Lock()
	defer s.deliver.Unlock()
	fn(s.currentView())
}

// Close releases any drag still held
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Release()
}

func (s *Session) whilePlaying(ctx context.Context, fn func()) {
	s.run(ctx, func() error {
		if s.phase == PhasePlaying {
			fn()
		}
		return nil
	})
}

func (s *Session) requirePlaying(op string) error {
	if s.phase == PhasePlaying {
		return nil
	}
	return pkgerrors.NewConflictError(fmt.Sprintf("cannot %s while session is %s", op, s.phase)).
		WithCode(CodeNotPlaying)
}

func (s *Session) transition(from, to Phase) bool {
	if s.phase != from {
		return false
	}
	s.phase = to
	s.record(events.NewPhaseChanged(s.id, string(from), string(to), s.clock()))
	return true
}

func (s *Session) record(e events.DomainEvent) {
	s.pending = append(s.pending, e)
}

// run executes fn under the lock and publishes the events it produced once
// the lock is released. Delivery is handed over before unlocking so a
// later command cannot overtake it.
func (s *Session) run(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	err := fn()
	evts := s.collect()
	s.lastActive = s.clock()
	if s.publisher == nil || len(evts) == 0 {
		s.mu.Unlock()
		return err
	}
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.mu.Unlock()

	s.publish(ctx, evts)
	return err
}

func (s *Session) collect() []events.DomainEvent {
	evts := s.store.GetUncommittedEvents()
	s.store.MarkEventsAsCommitted()
	evts = append(evts, s.controller.DrainEvents()...)
	evts = append(evts, s.pending...)
	s.pending = nil
	return evts
}

func (s *Session) publish(ctx context.Context, evts []events.DomainEvent) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, s.id, evts); err != nil {
		s.logger.Warn("Failed to publish session events",
			zap.String("session_id", s.id),
			zap.Int("count", len(evts)),
			zap.Error(err),
		)
	}
}
