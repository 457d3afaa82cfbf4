// Package acquire is the control loop: it waits for the sensor's ready
// signal while servicing clients, then refreshes the records, rebuilds the
// served page and checks the network link.
//
// Everything runs on the caller's goroutine. Readout completes before the
// page is assembled, and assembly completes before the dispatcher can see
// the new document.
package acquire

import (
	"context"

	"envserve-go/drivers/ms430"
	"envserve-go/services/diag"
	"envserve-go/services/dispatch"
	"envserve-go/services/link"
	"envserve-go/services/page"
	"envserve-go/types"
)

// ReadySignal is the sensor's data-ready line, polled once per iteration.
type ReadySignal interface {
	Asserted() bool
	Clear()
}

// LinkChecker verifies connectivity once per cycle (*link.Supervisor).
type LinkChecker interface {
	Check(ctx context.Context) (rejoined bool, err error)
}

var _ LinkChecker = (*link.Supervisor)(nil)

// State of the control loop.
type State uint8

const (
	Waiting State = iota
	Acquiring
)

func (s State) String() string {
	if s == Acquiring {
		return "acquiring"
	}
	return "waiting"
}

// Config is the per-build page and readout configuration.
type Config struct {
	RefreshSeconds int
	Particle       ms430.ParticleSensor
	TempUnit       ms430.TempUnit
	ShowStale      bool
}

// Deps are the collaborators. Link, Log and Counters may be nil; a nil
// Yield does nothing, which only suits tests.
type Deps struct {
	Sensor   Sensor
	Ready    ReadySignal
	Listener dispatch.Listener
	Link     LinkChecker
	Yield    func()
	Log      *diag.Logger
	Counters *types.Counters
}

// Scheduler owns the records and the served document.
type Scheduler struct {
	cfg   Config
	d     Deps
	disp  *dispatch.Dispatcher
	rec   types.Records
	doc   page.Document
	state State
}

// New returns a Scheduler in the Waiting state with an empty document.
func New(cfg Config, d Deps) *Scheduler {
	if d.Yield == nil {
		d.Yield = func() {}
	}
	s := &Scheduler{cfg: cfg, d: d}
	s.disp = dispatch.New(d.Listener, &s.doc, d.Yield, d.Counters, d.Log)
	return s
}

func (s *Scheduler) options(fresh types.Freshness) page.Options {
	return page.Options{
		RefreshSeconds: s.cfg.RefreshSeconds,
		Particle:       s.cfg.Particle,
		TempUnit:       s.cfg.TempUnit,
		ShowStale:      s.cfg.ShowStale,
		Fresh:          fresh,
	}
}

// Prime assembles the page from the zero records so clients get a valid
// document before the first cycle completes.
func (s *Scheduler) Prime() {
	s.assemble(types.AllFresh(s.cfg.Particle != ms430.ParticleOff))
}

func (s *Scheduler) assemble(fresh types.Freshness) {
	err := page.Assemble(&s.doc, &s.rec, s.options(fresh))
	if err != nil {
		s.d.Log.Log("page", "assemble failed, keeping previous page:", err)
	}
	if s.d.Counters == nil {
		return
	}
	if err != nil {
		s.d.Counters.Overflows.Add(1)
	}
	s.d.Counters.PageBytes.Store(uint32(s.doc.Len()))
}

// Poll runs one loop iteration: acquire if the ready signal is asserted,
// otherwise give the dispatcher one chance. It always yields once.
func (s *Scheduler) Poll(ctx context.Context) {
	if s.d.Ready.Asserted() {
		s.d.Ready.Clear()
		s.Acquire(ctx)
	} else {
		s.disp.Service()
	}
	s.d.Yield()
}

// Acquire reads the records, rebuilds the page and checks the link.
func (s *Scheduler) Acquire(ctx context.Context) {
	s.state = Acquiring
	defer func() { s.state = Waiting }()

	withParticle := s.cfg.Particle != ms430.ParticleOff
	fresh, failures := Readout(s.d.Sensor, &s.rec, withParticle, s.d.Log)
	if s.d.Counters != nil {
		s.d.Counters.Cycles.Add(1)
		if failures > 0 {
			s.d.Counters.TransportFailures.Add(uint32(failures))
		}
	}

	s.assemble(fresh)

	if s.d.Link == nil {
		return
	}
	rejoined, err := s.d.Link.Check(ctx)
	if err != nil {
		s.d.Log.Log("link", "rejoin failed:", err)
	}
	if rejoined {
		// A ready edge seen during a long rejoin is dropped; the next
		// update starts from a fresh cadence boundary.
		s.d.Ready.Clear()
	}
}

// Run primes the page if needed and polls until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.doc.Empty() {
		s.Prime()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Poll(ctx)
	}
}

// State returns the current loop state.
func (s *Scheduler) State() State { return s.state }

// Records returns a copy of the current records.
func (s *Scheduler) Records() types.Records { return s.rec }

// Document returns the served document.
func (s *Scheduler) Document() *page.Document { return &s.doc }

// WaitReady blocks, yielding, until r is asserted, then clears it.
func WaitReady(ctx context.Context, r ReadySignal, yield func()) error {
	for !r.Asserted() {
		if err := ctx.Err(); err != nil {
			return err
		}
		yield()
	}
	r.Clear()
	return nil
}
