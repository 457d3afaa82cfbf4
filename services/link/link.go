// Package link establishes network connectivity once at startup and, in
// joining mode, restores it whenever the scheduler finds it lost.
package link

import (
	"context"
	"net/netip"
	"time"

	"envserve-go/errcode"
	"envserve-go/services/diag"
	"envserve-go/types"
)

// Link is the network association collaborator.
type Link interface {
	Connect(ssid, password string) error
	CreateAccessPoint(ssid, password string, addr netip.Addr) error
	Status() types.LinkStatus
	Addr() netip.Addr
}

// Config selects the mode and credentials; fixed for the process lifetime.
type Config struct {
	Mode        types.LinkMode
	SSID        string
	Password    string
	HostAddr    netip.Addr
	RetryDelay  time.Duration
	MaxAttempts int // 0 retries until connected
}

// Supervisor owns the link for the lifetime of the process.
type Supervisor struct {
	cfg  Config
	link Link
	log  *diag.Logger
	cnt  *types.Counters

	// Sleep waits between join attempts; replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	// Yield runs while waiting for the diagnostic channel.
	Yield func()
}

// New returns a Supervisor; log and cnt may be nil.
func New(l Link, cfg Config, log *diag.Logger, cnt *types.Counters) *Supervisor {
	return &Supervisor{
		cfg:   cfg,
		link:  l,
		log:   log,
		cnt:   cnt,
		Sleep: sleepCtx,
		Yield: func() { time.Sleep(time.Millisecond) },
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Mode returns the configured mode.
func (s *Supervisor) Mode() types.LinkMode { return s.cfg.Mode }

// Start brings the link up. Hosting makes a single attempt and a failure is
// fatal (errcode.APFailed). Joining first waits for the diagnostic channel
// so the obtained address can be reported, then joins.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.cfg.Mode == types.ModeHost {
		s.log.Log("link", "creating access point", s.cfg.SSID)
		if err := s.link.CreateAccessPoint(s.cfg.SSID, s.cfg.Password, s.cfg.HostAddr); err != nil {
			s.log.Log("link", "access point failed:", err)
			return errcode.Wrap(errcode.APFailed, "link start", err)
		}
		s.reportAddr(s.cfg.HostAddr)
		return nil
	}

	for !s.log.Ready() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Yield()
	}
	return s.join(ctx)
}

// Check verifies the link once per cycle. In joining mode a lost link is
// re-joined synchronously; rejoined reports that an attempt was made.
// Hosting mode has no link to lose.
func (s *Supervisor) Check(ctx context.Context) (rejoined bool, err error) {
	if s.cfg.Mode == types.ModeHost {
		return false, nil
	}
	st := s.link.Status()
	if st == types.LinkConnected {
		return false, nil
	}
	s.log.Log("link", "status:", st)
	if s.cnt != nil {
		s.cnt.Reconnects.Add(1)
	}
	return true, s.join(ctx)
}

func (s *Supervisor) join(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		s.log.Log("link", "joining", s.cfg.SSID, "attempt", attempt)
		err := s.link.Connect(s.cfg.SSID, s.cfg.Password)
		if err == nil && s.link.Status() == types.LinkConnected {
			s.reportAddr(s.link.Addr())
			return nil
		}
		if err != nil {
			s.log.Log("link", "join failed:", err)
		} else {
			s.log.Log("link", "join incomplete, status:", s.link.Status())
		}
		if s.cfg.MaxAttempts > 0 && attempt >= s.cfg.MaxAttempts {
			return &errcode.E{C: errcode.JoinFailed, Op: "link join", Msg: "attempt limit reached", Err: err}
		}
		if err := s.Sleep(ctx, s.cfg.RetryDelay); err != nil {
			return err
		}
	}
}

func (s *Supervisor) reportAddr(a netip.Addr) {
	s.log.Log("link", "view the page at http://"+a.String())
}
