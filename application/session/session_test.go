package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmapx/domain/config"
	"mindmapx/domain/core/aggregates"
	"mindmapx/domain/core/valueobjects"
	"mindmapx/domain/events"
	pkgerrors "mindmapx/pkg/errors"
)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, evts []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range evts {
		p.types = append(p.types, e.GetEventType())
	}
	return p.err
}

func (p *recordingPublisher) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

func newTestSession(t *testing.T, pub *recordingPublisher) *Session {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	opts := []Option{
		WithClock(func() time.Time { return now }),
		WithMapOptions(
			aggregates.WithIDGenerator(valueobjects.NewSequenceGenerator("n")),
			aggregates.WithRandomSource(fixedRand(0.25)),
		),
	}
	if pub != nil {
		opts = append(opts, WithPublisher(pub))
	}
	return New("s1", config.DefaultDomainConfig(), zap.NewNop(), opts...)
}

func TestSessionPhaseGuards(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	assert.Equal(t, PhaseStart, s.Phase())

	// Nothing is editable before the session starts
	s.SelectNode(ctx, valueobjects.Root())
	assert.Empty(t, s.Suggestions())
	_, err := s.AddChildNode(ctx, valueobjects.MustLabel("Idea"), valueobjects.Color{})
	assert.True(t, pkgerrors.HasCode(err, CodeNotPlaying))

	require.True(t, s.Start(ctx))
	assert.False(t, s.Start(ctx))
	assert.Equal(t, PhasePlaying, s.Phase())

	s.SelectNode(ctx, valueobjects.Root())
	_, err = s.AddChildNode(ctx, valueobjects.MustLabel("Idea"), valueobjects.Color{})
	require.NoError(t, err)

	require.True(t, s.Finish(ctx))
	label := valueobjects.MustLabel("late edit")
	err = s.EditNode(ctx, valueobjects.Root(), &label, nil)
	assert.True(t, pkgerrors.IsConflict(err))

	// Export stays available once finished
	f := s.Capture()
	assert.Len(t, f.Snapshot.Nodes, 2)
	assert.Equal(t, PhaseFinished, f.Phase)
}

func TestSessionResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Start(ctx)
	s.SetZoom(ctx, 1.4)
	s.SelectNode(ctx, valueobjects.Root())
	_, err := s.AddChildNode(ctx, valueobjects.MustLabel("Idea"), valueobjects.Color{})
	require.NoError(t, err)
	s.BeginDrag(ctx, valueobjects.Root(), PointerEvent{ClientX: 400, ClientY: 300})

	s.Reset(ctx)

	v := s.View()
	assert.Equal(t, PhaseStart, v.Phase)
	assert.Equal(t, ModeIdle, v.Mode)
	assert.Equal(t, 1.0, v.Zoom)
	assert.Len(t, v.Nodes, 1)
	assert.Empty(t, v.Edges)
	assert.Zero(t, s.ActiveSubscriptions())
	assert.Equal(t, Summary{Nodes: 1, Edges: 0, Depth: 1}, v.Summary)
}

func TestSessionZoomIsTotal(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	assert.Equal(t, 1.5, s.SetZoom(ctx, 10))
	assert.Equal(t, 0.5, s.SetZoom(ctx, -5))
	assert.Equal(t, 0.6, s.ZoomIn(ctx))
	assert.Equal(t, 0.5, s.ZoomOut(ctx))
	assert.Equal(t, 1.0, s.ResetZoom(ctx))
}

func TestSessionSetRoleColor(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Start(ctx)
	s.SelectNode(ctx, valueobjects.Root())
	plain, err := s.AddChildNode(ctx, valueobjects.MustLabel("Plain"), valueobjects.Color{})
	require.NoError(t, err)
	custom, err := s.AddChildNode(ctx, valueobjects.MustLabel("Custom"), valueobjects.MustColor("#7B61FF"))
	require.NoError(t, err)

	require.NoError(t, s.SetRoleColor(ctx, RoleChild, valueobjects.MustColor("#38A169")))
	require.NoError(t, s.SetRoleColor(ctx, RoleRoot, valueobjects.MustColor("#ED8936")))
	require.NoError(t, s.SetRoleColor(ctx, RoleSelected, valueobjects.MustColor("#FFFFFF")))

	fills := map[string]string{}
	for _, n := range s.View().Nodes {
		fills[n.ID] = n.Fill
	}
	assert.Equal(t, "#38A169", fills[plain.String()])
	assert.Equal(t, "#7B61FF", fills[custom.String()])
	assert.Equal(t, "#ED8936", fills[valueobjects.RootNodeID])
	assert.Equal(t, "#FFFFFF", s.Colors().Selected.String())

	assert.Error(t, s.SetRoleColor(ctx, RoleChild, valueobjects.Color{}))
}

func TestSessionPublishesAfterEachCommand(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := newTestSession(t, pub)

	s.Start(ctx)
	s.SelectNode(ctx, valueobjects.Root())
	_, err := s.AddChildNode(ctx, valueobjects.MustLabel("Idea"), valueobjects.Color{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.TypePhaseChanged,
		events.TypeSelectionChanged,
		events.TypeNodeAdded,
		events.TypeSelectionChanged,
	}, pub.seen())
}

func TestSessionPublishFailureDoesNotFailCommand(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("observer gone")}
	s := newTestSession(t, pub)

	assert.True(t, s.Start(ctx))
	assert.Equal(t, PhasePlaying, s.Phase())
}

func TestSessionConcurrentCommands(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Start(ctx)
	s.SelectNode(ctx, valueobjects.Root())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddChildNode(ctx, valueobjects.MustLabel("Idea"), valueobjects.Color{})
			s.ZoomIn(ctx)
			_ = s.View()
		}()
	}
	wg.Wait()

	f := s.Capture()
	assert.Len(t, f.Snapshot.Nodes, 21)
	assert.NoError(t, f.Snapshot.Validate())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("selected")
	require.NoError(t, err)
	assert.Equal(t, RoleSelected, r)

	_, err = ParseRole("edge")
	assert.True(t, pkgerrors.IsValidation(err))
}

// gatedPublisher holds the first zoom delivery until release is closed
type gatedPublisher struct {
	mu      sync.Mutex
	zooms   []float64
	gated   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedPublisher) Publish(_ context.Context, _ string, evts []events.DomainEvent) error {
	for _, e := range evts {
		z, ok := e.(events.ZoomChanged)
		if !ok {
			continue
		}
		p.mu.Lock()
		first := !p.gated
		p.gated = true
		p.mu.Unlock()
		if first {
			close(p.entered)
			<-p.release
		}
		p.mu.Lock()
		p.zooms = append(p.zooms, z.Zoom)
		p.mu.Unlock()
	}
	return nil
}

func (p *gatedPublisher) delivered() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.zooms...)
}

func newGatedSession(pub *gatedPublisher) *Session {
	return New("s1", config.DefaultDomainConfig(), zap.NewNop(), WithPublisher(pub))
}

func TestSessionDeliversEventsInCommitOrder(t *testing.T) {
	ctx := context.Background()
	pub := newGatedPublisher()
	s := newGatedSession(pub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SetZoom(ctx, 0.5)
	}()
	<-pub.entered

	secondDone := make(chan struct{})
	go func() {
		s.SetZoom(ctx, 1.5)
		close(secondDone)
	}()

	// The later command cannot finish while the earlier delivery is in flight
	assert.Never(t, func() bool {
		select {
		case <-secondDone:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(pub.release)
	wg.Wait()
	<-secondDone

	assert.Equal(t, []float64{0.5, 1.5}, pub.delivered())
}

func TestSessionObserveWaitsForInFlightDelivery(t *testing.T) {
	ctx := context.Background()
	pub := newGatedPublisher()
	s := newGatedSession(pub)

	go s.SetZoom(ctx, 0.5)
	<-pub.entered

	observed := make(chan View, 1)
	go s.Observe(func(v View) { observed <- v })

	assert.Never(t, func() bool { return len(observed) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	close(pub.release)
	select {
	case v := <-observed:
		assert.Equal(t, 0.5, v.Zoom)
		assert.Equal(t, []float64{0.5}, pub.delivered(), "the snapshot follows every delivered event")
	case <-time.After(2 * time.Second):
		t.Fatal("Observe never ran")
	}
}

func TestSessionViewIsConsistent(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	require.True(t, s.Start(ctx))
	s.SelectNode(ctx, valueobjects.Root())

	v := s.View()
	assert.Equal(t, ModeSelected, v.Mode)
	assert.Equal(t, valueobjects.RootNodeID, v.Selected)
	assert.NotEmpty(t, v.Suggestions)
}
