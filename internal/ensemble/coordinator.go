// Package ensemble coordinates peer lifecycle against the performance
// state: redistribution on churn, program fan-out, and the silence-by-
// default rule for peers without a valid assignment.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/capogreco/string.assembly.fm-sub005/internal/bank"
	"github.com/capogreco/string.assembly.fm-sub005/internal/distribute"
	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
	"github.com/capogreco/string.assembly.fm-sub005/internal/resolve"
	"github.com/capogreco/string.assembly.fm-sub005/internal/state"
	"github.com/capogreco/string.assembly.fm-sub005/internal/timing"
)

// ErrNoPeersReached is returned when a send-current-part fan-out fails for
// every connected peer. It is the only send error that propagates; a
// single peer failing is logged and skipped.
var ErrNoPeersReached = errors.New("no peers reached")

// Transport delivers a message to one peer. Sends are fire-and-forget;
// the coordinator never awaits acknowledgement.
type Transport interface {
	Send(peerID string, message any) error
}

// Peer statuses
type PeerStatus string

const (
	PeerUnassigned    PeerStatus = "unassigned"
	PeerAssigned      PeerStatus = "assigned"
	PeerAwaitingFirst PeerStatus = "awaiting-first-program"
)

type peer struct {
	id     string
	status PeerStatus
}

// committed remembers the last deliberately pushed program so that
// late-joining peers can catch up on request.
type committed struct {
	params     model.Params
	transition model.TransitionConfig
}

// lastLoad remembers which bank was last broadcast and with what
// transition, for peers pulling that bank's program on demand.
type lastLoad struct {
	bank       int
	transition model.TransitionConfig
}

// Coordinator owns all mutation of the performance state. Every event
// handler runs under one lock and fully recomputes the assignment before
// returning, so no observer ever sees a half-updated assignment.
type Coordinator struct {
	mu sync.Mutex

	state     *state.PerformanceState
	banks     *bank.Store
	transport Transport
	resolver  *resolve.Resolver
	rng       *rand.Rand

	strategy   distribute.Strategy
	peers      map[string]*peer
	order      []string // connect order; keeps round-robin deterministic
	assignment map[string]distribute.Assigned

	defaultTransition model.TransitionConfig

	lastSent *committed
	lastLoad *lastLoad
	power    bool
}

func New(st *state.PerformanceState, banks *bank.Store, transport Transport, strategy distribute.Strategy, rng *rand.Rand) *Coordinator {
	return &Coordinator{
		state:      st,
		banks:      banks,
		transport:  transport,
		resolver:   resolve.New(rng),
		rng:        rng,
		strategy:   strategy,
		peers:      make(map[string]*peer),
		assignment: make(map[string]distribute.Assigned),

		defaultTransition: model.DefaultTransition(),
		power:             true,
	}
}

// SetDefaultTransition overrides the transition used when a send or load
// does not supply one. Call during wiring, before serving.
func (c *Coordinator) SetDefaultTransition(cfg model.TransitionConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultTransition = cfg.Clamped()
}

// PeerConnected registers a peer and redistributes immediately. No
// program is pushed here: traffic waits for an explicit request from the
// peer or the next send-current-part.
func (c *Coordinator) PeerConnected(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.peers[id]; ok {
		return
	}
	c.peers[id] = &peer{id: id, status: PeerAwaitingFirst}
	c.order = append(c.order, id)
	c.redistribute()
	log.Printf("Peer %s connected (%d total)", id, len(c.peers))
}

// PeerDisconnected drops the peer and redistributes the remaining ones
// against the unchanged chord so note coverage is preserved.
func (c *Coordinator) PeerDisconnected(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.peers[id]; !ok {
		return
	}
	delete(c.peers, id)
	for i, pid := range c.order {
		if pid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.redistribute()
	log.Printf("Peer %s disconnected (%d remaining)", id, len(c.peers))
}

// ProgramRequested answers a peer's catch-up request. Nothing is sent
// until a program has been deliberately committed: a freshly joined
// ensemble must not start sounding on its own.
func (c *Coordinator) ProgramRequested(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.peers[id]; !ok {
		return
	}
	if c.lastSent == nil || len(c.state.Chord()) == 0 {
		log.Printf("Peer %s requested a program before any commit; staying silent", id)
		return
	}

	// Catch-up, not a musical transition: zero duration/stagger/spread.
	if err := c.sendProgram(id, c.lastSent.params, model.ZeroTransition()); err != nil {
		log.Printf("Failed to send program to peer %s: %v", id, err)
	}
}

// BankProgramRequested answers a peer pulling the program for a loaded
// bank, using the peer's transition if it sent one, else the transition
// the bank was loaded with.
func (c *Coordinator) BankProgramRequested(id string, bankID int, transition *model.TransitionConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.peers[id]; !ok {
		return
	}
	if c.lastLoad == nil || c.lastLoad.bank != bankID {
		log.Printf("Peer %s requested bank %d which is not loaded", id, bankID)
		return
	}

	cfg := c.lastLoad.transition
	if transition != nil {
		cfg = transition.Clamped()
	}
	if err := c.sendProgram(id, c.state.Params(), cfg); err != nil {
		log.Printf("Failed to send bank %d program to peer %s: %v", bankID, id, err)
	}
}

// SendCurrentPart resolves and pushes a program to every connected peer,
// explicitly including unassigned ones so they receive silence rather
// than keep stale state. Per-peer failures are logged and skipped; only a
// total failure is an error.
func (c *Coordinator) SendCurrentPart(transition *model.TransitionConfig, strategy string) (model.SendResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.defaultTransition
	if transition != nil {
		cfg = transition.Clamped()
	}
	if strategy != "" {
		c.strategy = distribute.ParseStrategy(strategy)
	}
	c.redistribute()

	base := c.state.Params()
	report := model.SendResponse{TotalPeers: len(c.peers)}
	for _, id := range c.order {
		if err := c.sendProgram(id, base, cfg); err != nil {
			log.Printf("Failed to send program to peer %s: %v", id, err)
			continue
		}
		report.SuccessCount++
	}

	c.lastSent = &committed{params: base, transition: cfg}

	if report.TotalPeers > 0 && report.SuccessCount == 0 {
		return report, fmt.Errorf("send current part: %w", ErrNoPeersReached)
	}
	return report, nil
}

// SetChord replaces the chord and recomputes the assignment. Nothing is
// pushed; the new part reaches peers on the next send.
func (c *Coordinator) SetChord(frequencies []float64) model.EnsembleResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.SetChord(frequencies)
	c.redistribute()
	return c.view()
}

// SetExpression attaches an expression to a chord note. The assignment is
// untouched: expressions overlay at resolution time.
func (c *Coordinator) SetExpression(noteName string, expr model.Expression) (model.EnsembleResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.SetExpression(noteName, expr); err != nil {
		return model.EnsembleResponse{}, err
	}
	return c.view(), nil
}

// ClearExpression removes a note's expression.
func (c *Coordinator) ClearExpression(noteName string) model.EnsembleResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.ClearExpression(noteName)
	return c.view()
}

// SetHarmonicValues replaces one harmonic ratio set.
func (c *Coordinator) SetHarmonicValues(t model.ExpressionType, part model.RatioPart, values []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetHarmonicValues(t, part, values)
}

// ToggleHarmonic flips one value in a harmonic ratio set.
func (c *Coordinator) ToggleHarmonic(t model.ExpressionType, part model.RatioPart, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ToggleHarmonic(t, part, value)
}

// SetPower flips ensemble power and broadcasts the command to all peers.
func (c *Coordinator) SetPower(on bool) model.SendResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.power = on
	return c.broadcast(model.NewPowerCommand(on))
}

// SaveBank snapshots the performance state into a bank and tells peers to
// snapshot their local state alongside it.
func (c *Coordinator) SaveBank(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.banks.Save(ctx, id, c.state.Snapshot()); err != nil {
		return fmt.Errorf("failed to save bank %d: %w", id, err)
	}
	c.broadcast(model.NewSaveCommand(id))
	return nil
}

// LoadBank restores a bank into the performance state and broadcasts a
// load command. No full programs are pushed: peers hold the bank locally
// and pull a program on demand via BankProgramRequested.
func (c *Coordinator) LoadBank(ctx context.Context, id int, transition *model.TransitionConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.banks.Load(ctx, id)
	if err != nil {
		return err
	}
	c.state.Restore(snap)
	c.redistribute()

	cfg := c.defaultTransition
	if transition != nil {
		cfg = transition.Clamped()
	}
	c.lastLoad = &lastLoad{bank: id, transition: cfg}
	c.broadcast(model.NewLoadCommand(id, cfg))
	return nil
}

// Snapshot exposes the current state for the autosave worker.
func (c *Coordinator) Snapshot() state.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// View reports peers, assignment and state version for the operator UI.
func (c *Coordinator) View() model.EnsembleResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// PeerStatusOf reports one peer's lifecycle state; false when unknown.
func (c *Coordinator) PeerStatusOf(id string) (PeerStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.peers[id]
	if !ok {
		return "", false
	}
	return p.status, true
}

// redistribute fully recomputes the assignment from the current chord and
// peer order, then settles every peer into assigned or unassigned. Runs
// under the coordinator lock.
func (c *Coordinator) redistribute() {
	c.assignment = distribute.Distribute(c.state.Chord(), c.order, c.strategy, c.rng)
	for id, p := range c.peers {
		if _, ok := c.assignment[id]; ok {
			p.status = PeerAssigned
		} else {
			p.status = PeerUnassigned
		}
	}
}

// sendProgram resolves one peer's program, overlays its humanized timing
// and pushes it. Peers without an assignment get an explicit silence
// program, never stale pitch data.
func (c *Coordinator) sendProgram(id string, base model.Params, cfg model.TransitionConfig) error {
	var assigned *distribute.Assigned
	if a, ok := c.assignment[id]; ok {
		assigned = &a
	}

	prog := c.resolver.ForPeer(id, assigned, base, cfg, resolve.Context{
		Chord:       c.state.Chord(),
		Expressions: c.state.Expressions(),
		Assignment:  c.assignment,
		Harmonics:   c.state.Harmonics(),
		Power:       c.power,
	})

	t := timing.For(cfg, c.rng)
	prog.Transition.Delay = t.Delay
	prog.Transition.Duration = t.Duration

	return c.transport.Send(id, model.NewProgramMessage(prog))
}

// broadcast pushes a command message to every peer, counting successes.
func (c *Coordinator) broadcast(msg model.CommandMessage) model.SendResponse {
	report := model.SendResponse{TotalPeers: len(c.peers)}
	for _, id := range c.order {
		if err := c.transport.Send(id, msg); err != nil {
			log.Printf("Failed to send %s command to peer %s: %v", msg.Name, id, err)
			continue
		}
		report.SuccessCount++
	}
	return report
}

func (c *Coordinator) view() model.EnsembleResponse {
	chord := c.state.Chord()
	peers := make([]model.PeerView, 0, len(c.order))
	for _, id := range c.order {
		p := c.peers[id]
		view := model.PeerView{ID: id, Status: string(p.status)}
		if a, ok := c.assignment[id]; ok {
			view.NoteName = a.Note.Name()
			view.Frequency = a.Note.Frequency
			view.Expression = string(c.state.ExpressionFor(a.Note).Type)
		}
		peers = append(peers, view)
	}
	return model.EnsembleResponse{
		Peers:        peers,
		Frequencies:  chord.Frequencies(),
		Expressions:  c.state.Expressions(),
		StateVersion: c.state.Version(),
		Power:        c.power,
	}
}
