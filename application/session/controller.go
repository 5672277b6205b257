package session

import (
	"time"

	"go.uber.org/zap"

	"mindmapx/domain/config"
	"mindmapx/domain/core/aggregates"
	"mindmapx/domain/core/valueobjects"
	"mindmapx/domain/events"
	"mindmapx/domain/suggestions"
	"mindmapx/domain/viewport"
	pkgerrors "mindmapx/pkg/errors"
)

// Mode is the interaction state of the canvas.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeSelected Mode = "selected"
	ModeDragging Mode = "dragging"
)

// ErrNoSelection is returned by commands that act on the selected idea.
func ErrNoSelection() *pkgerrors.AppError {
	return pkgerrors.NewConflictError("no idea is selected").WithCode(pkgerrors.CodeNoSelection)
}

type drag struct {
	nodeID valueobjects.NodeID
	offset valueobjects.Position
	press  valueobjects.Position
	travel float64
	sub    *Subscription
}

// DragResult describes a finished drag.
type DragResult struct {
	NodeID   valueobjects.NodeID
	WasClick bool
}

// Controller is the pointer/selection state machine over one mind map.
// Selection and drag are tracked separately; a node may be both.
// Not safe for concurrent use.
type Controller struct {
	store   *aggregates.MindMap
	view    *viewport.Transform
	engine  *suggestions.Engine
	tracker *PointerTracker
	cfg     *config.DomainConfig
	logger  *zap.Logger
	clock   func() time.Time
	id      string

	selected    *valueobjects.NodeID
	drag        *drag
	suggestions []string

	events []events.DomainEvent
}

// NewController wires a controller over store and view
func NewController(id string, store *aggregates.MindMap, view *viewport.Transform, engine *suggestions.Engine,
	cfg *config.DomainConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Controller{
		store:   store,
		view:    view,
		engine:  engine,
		tracker: NewPointerTracker(),
		cfg:     cfg,
		logger:  logger,
		clock:   time.Now,
		id:      id,
	}
}

// Mode returns Dragging while a drag is active, else Selected or Idle
func (c *Controller) Mode() Mode {
	switch {
	case c.drag != nil:
		return ModeDragging
	case c.selected != nil:
		return ModeSelected
	default:
		return ModeIdle
	}
}

// Selected returns the selected node id, if any
func (c *Controller) Selected() (valueobjects.NodeID, bool) {
	if c.selected == nil {
		return valueobjects.NodeID{}, false
	}
	return *c.selected, true
}

// Dragging returns the dragged node and grab offset, if a drag is active
func (c *Controller) Dragging() (valueobjects.NodeID, valueobjects.Position, bool) {
	if c.drag == nil {
		return valueobjects.NodeID{}, valueobjects.Position{}, false
	}
	return c.drag.nodeID, c.drag.offset, true
}

// Suggestions returns a copy of the visible suggestions
func (c *Controller) Suggestions() []string {
	out := make([]string, len(c.suggestions))
	copy(out, c.suggestions)
	return out
}

// ActiveSubscriptions reports unreleased drag subscriptions
func (c *Controller) ActiveSubscriptions() int {
	return c.tracker.Active()
}

// ClickEmptyCanvas clears the selection and suggestions
func (c *Controller) ClickEmptyCanvas() {
	if c.selected == nil && len(c.suggestions) == 0 {
		return
	}
	c.selected = nil
	c.suggestions = nil
	c.addEvent(events.NewSelectionChanged(c.id, nil, nil, c.clock()))
}

// ClickNode selects id and shows suggestions for its label. Clicking the
// selected node again regenerates them. Ignored while dragging.
func (c *Controller) ClickNode(id valueobjects.NodeID) {
	if c.drag != nil {
		return
	}
	node, err := c.store.Node(id)
	if err != nil {
		c.ignoreStale("click", err)
		return
	}
	c.selectWithSuggestions(node.ID(), c.engine.Generate(node.Label().String()))
}

func (c *Controller) selectWithSuggestions(id valueobjects.NodeID, sugg []string) {
	c.selected = &id
	c.suggestions = sugg
	c.addEvent(events.NewSelectionChanged(c.id, &id, c.Suggestions(), c.clock()))
}

// PointerDown grabs id. The grab offset keeps the point under the pointer
// fixed relative to the node for the whole drag.
func (c *Controller) PointerDown(id valueobjects.NodeID, ev PointerEvent) {
	if !ev.Valid() {
		return
	}
	node, err := c.store.Node(id)
	if err != nil {
		c.ignoreStale("pointer down", err)
		return
	}
	if c.drag != nil {
		// A second press without a release ends the first drag.
		c.endDrag(false)
	}

	canvas := c.view.PointerToCanvas(ev.Client(), ev.Origin())
	offset := canvas.Sub(node.Position())
	c.drag = &drag{
		nodeID: id,
		offset: offset,
		press:  ev.Client(),
		sub:    c.tracker.Acquire(id),
	}
	c.addEvent(events.NewDragStarted(c.id, id, offset, c.clock()))
}

// PointerMove moves the dragged node once per event
func (c *Controller) PointerMove(ev PointerEvent) {
	if c.drag == nil || !ev.Valid() {
		return
	}
	if d := ev.Client().DistanceTo(c.drag.press); d > c.drag.travel {
		c.drag.travel = d
	}
	canvas := c.view.PointerToCanvas(ev.Client(), ev.Origin())
	if err := c.store.MoveNode(c.drag.nodeID, canvas.Sub(c.drag.offset)); err != nil {
		// The node vanished under the pointer (reset from elsewhere).
		c.ignoreStale("pointer move", err)
		c.endDrag(false)
	}
}

// PointerUp ends the drag and selects the dragged node
func (c *Controller) PointerUp() (DragResult, bool) {
	return c.endDrag(false)
}

// PointerLeave ends the drag exactly like PointerUp
func (c *Controller) PointerLeave() (DragResult, bool) {
	return c.endDrag(true)
}

func (c *Controller) endDrag(left bool) (DragResult, bool) {
	if c.drag == nil {
		return DragResult{}, false
	}
	d := c.drag
	c.drag = nil
	d.sub.Release()

	res := DragResult{
		NodeID:   d.nodeID,
		WasClick: c.cfg.ClickSlop > 0 && d.travel <= c.cfg.ClickSlop,
	}
	c.addEvent(events.NewDragEnded(c.id, d.nodeID, left, res.WasClick, c.clock()))

	if !c.store.HasNode(d.nodeID) {
		return res, true
	}
	switch {
	case res.WasClick:
		c.ClickNode(d.nodeID)
	case c.selected == nil || !c.selected.Equals(d.nodeID):
		// Suggestions belonged to the previous selection.
		c.selectWithSuggestions(d.nodeID, nil)
	}
	return res, true
}

// EditConfirm applies label and/or color to the selected node
func (c *Controller) EditConfirm(label *valueobjects.Label, color *valueobjects.Color) error {
	if c.selected == nil {
		return ErrNoSelection()
	}
	return c.EditNode(*c.selected, label, color)
}

// EditNode applies label and/or color to id. Unknown ids are a no-op.
func (c *Controller) EditNode(id valueobjects.NodeID, label *valueobjects.Label, color *valueobjects.Color) error {
	return c.ignoreStale("edit", c.store.EditNode(id, label, color))
}

// AddChild attaches a child under the selected node at the current zoom.
// Suggestions are hidden and the parent stays selected.
func (c *Controller) AddChild(label valueobjects.Label, color valueobjects.Color) (valueobjects.NodeID, error) {
	if c.selected == nil {
		return valueobjects.NodeID{}, ErrNoSelection()
	}
	id, err := c.store.AddNode(*c.selected, label, color, c.view.Zoom())
	if err != nil {
		return valueobjects.NodeID{}, c.ignoreStale("add child", err)
	}
	c.suggestions = nil
	c.addEvent(events.NewSelectionChanged(c.id, c.selected, nil, c.clock()))
	c.checkInvariants("add child")
	return id, nil
}

// Reset releases any drag, clears selection and restores the single root
func (c *Controller) Reset(rootColor valueobjects.Color) {
	c.endDrag(false)
	c.selected = nil
	c.suggestions = nil
	c.store.Reset(rootColor)
	c.addEvent(events.NewSelectionChanged(c.id, nil, nil, c.clock()))
	c.checkInvariants("reset")
}

// Release drops any active drag without selecting; used when the session closes.
func (c *Controller) Release() {
	if c.drag != nil {
		c.drag.sub.Release()
		c.drag = nil
	}
}

// ignoreStale swallows reference errors from stale ids and passes the rest through
func (c *Controller) ignoreStale(op string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.IsReference(err) {
		c.logger.Debug("Ignoring stale reference",
			zap.String("session_id", c.id),
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil
	}
	return err
}

func (c *Controller) checkInvariants(op string) {
	err := c.store.Validate()
	if err == nil {
		return
	}
	if c.cfg.StrictInvariants {
		panic(err)
	}
	c.logger.Error("Mind map invariant violated",
		zap.String("session_id", c.id),
		zap.String("operation", op),
		zap.Error(err),
	)
}

// DrainEvents returns and clears interaction events
func (c *Controller) DrainEvents() []events.DomainEvent {
	out := c.events
	c.events = nil
	return out
}

func (c *Controller) addEvent(e events.DomainEvent) {
	c.events = append(c.events, e)
}
