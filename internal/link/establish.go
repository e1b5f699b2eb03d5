package link

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"paper-soccer/internal/config"
)

const DefaultPort = 8988

// Discovery is what peer discovery hands over once a peer was chosen.
type Discovery struct {
	AmHost bool
	// PeerAddress is the host to dial when guest, with or without a port.
	PeerAddress string
}

// Role is the part this end plays in the link.
func (d Discovery) Role() Role {
	if d.AmHost {
		return Host
	}
	return Guest
}

type Config struct {
	Port int
	// ListenHost restricts the host's bind address; empty listens on all.
	ListenHost      string
	Path            string
	ConnectTimeout  time.Duration
	AcceptTimeout   time.Duration
	ConnectAttempts int
}

func DefaultConfig() Config {
	return Config{
		Port:            DefaultPort,
		Path:            "/link",
		ConnectTimeout:  500 * time.Millisecond,
		AcceptTimeout:   30 * time.Second,
		ConnectAttempts: 3,
	}
}

// ConfigFrom maps the loaded link section, keeping defaults for zero values.
func ConfigFrom(c config.Link) Config {
	out := DefaultConfig()
	if c.Port > 0 {
		out.Port = c.Port
	}
	if c.ConnectTimeout > 0 {
		out.ConnectTimeout = c.ConnectTimeout
	}
	if c.AcceptTimeout > 0 {
		out.AcceptTimeout = c.AcceptTimeout
	}
	if c.ConnectAttempts > 0 {
		out.ConnectAttempts = c.ConnectAttempts
	}
	return out
}

type Reason string

const (
	ReasonTimeout  Reason = "timeout"
	ReasonRefused  Reason = "refused"
	ReasonIO       Reason = "io"
	ReasonCanceled Reason = "canceled"
)

// FailedError is the failure outcome of an Attempt.
type FailedError struct {
	Role   Role
	Reason Reason
	Err    error
}

func (e *FailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("link failed (%s): %s", e.Role, e.Reason)
	}
	return fmt.Sprintf("link failed (%s): %s: %v", e.Role, e.Reason, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Result is the single outcome of an Attempt: Link is set on success,
// Err (a *FailedError) otherwise.
type Result struct {
	Role Role
	Link *Link
	Err  error
}

// Attempt is one in-flight connection establishment.
type Attempt struct {
	role   Role
	addr   string
	cancel context.CancelFunc

	once sync.Once
	done chan struct{}
	res  Result
}

// Done is closed once the outcome is known.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Result returns the outcome; it is the zero Result until Done is closed.
func (a *Attempt) Result() Result {
	select {
	case <-a.done:
		return a.res
	default:
		return Result{Role: a.role}
	}
}

// Wait blocks until the outcome is known or ctx ends. A ctx ending does not
// cancel the attempt.
func (a *Attempt) Wait(ctx context.Context) (Result, error) {
	select {
	case <-a.done:
		return a.res, nil
	case <-ctx.Done():
		return Result{Role: a.role}, ctx.Err()
	}
}

// Cancel aborts the attempt. After the outcome fired it has no effect.
func (a *Attempt) Cancel() { a.cancel() }

func (a *Attempt) Role() Role { return a.role }

// Addr is the bound listen address when hosting, the dial target when guest.
func (a *Attempt) Addr() string { return a.addr }

func (a *Attempt) finish(res Result) {
	a.once.Do(func() {
		res.Role = a.role
		a.res = res
		close(a.done)
		a.cancel()

		l := log.With().Str("component", "link").Str("role", a.role.String()).Str("addr", a.addr).Logger()
		if res.Err != nil {
			l.Warn().Err(res.Err).Msg("link failed")
			return
		}
		l.Info().Str("peer", res.Link.RemoteAddr()).Msg("link established")
	})
}

func (a *Attempt) fail(reason Reason, err error) {
	a.finish(Result{Err: &FailedError{Role: a.role, Reason: reason, Err: err}})
}

// Establish starts connecting in the background and returns at once. The
// host's listener is bound before Establish returns, so Addr is usable
// immediately; a bind failure is reported through the attempt.
func Establish(ctx context.Context, cfg Config, d Discovery) *Attempt {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.ConnectAttempts < 1 {
		cfg.ConnectAttempts = 1
	}
	actx, cancel := context.WithCancel(ctx)
	a := &Attempt{cancel: cancel, done: make(chan struct{})}

	a.role = d.Role()
	if d.AmHost {
		ln, err := net.Listen("tcp", net.JoinHostPort(cfg.ListenHost, strconv.Itoa(cfg.Port)))
		if err != nil {
			a.addr = net.JoinHostPort(cfg.ListenHost, strconv.Itoa(cfg.Port))
			a.fail(ReasonIO, err)
			return a
		}
		a.addr = ln.Addr().String()
		go a.host(actx, cfg, ln)
		return a
	}

	if d.PeerAddress == "" {
		a.fail(ReasonIO, errors.New("no peer address"))
		return a
	}
	a.addr = peerHostPort(d.PeerAddress, cfg.Port)
	go a.guest(actx, cfg)
	return a
}

func peerHostPort(addr string, port int) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// host serves exactly one websocket upgrade, then shuts the listener down.
// Connections already hijacked by the upgrade survive srv.Close.
func (a *Attempt) host(ctx context.Context, cfg Config, ln net.Listener) {
	accepted := make(chan *websocket.Conn)
	resolved := make(chan struct{})
	var claimed atomic.Bool

	upgrader := websocket.Upgrader{
		HandshakeTimeout: cfg.AcceptTimeout,
		CheckOrigin:      func(*http.Request) bool { return true },
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(cfg.Path, func(c *gin.Context) {
		if !claimed.CompareAndSwap(false, true) {
			c.JSON(http.StatusConflict, gin.H{"error": "host already has a peer"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already answered the request
			claimed.Store(false)
			return
		}
		select {
		case accepted <- conn:
		case <-resolved:
			_ = conn.Close()
		}
	})
	srv := &http.Server{Handler: r, ReadHeaderTimeout: cfg.AcceptTimeout}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		timer := time.NewTimer(cfg.AcceptTimeout)
		defer timer.Stop()

		var res *Result
		select {
		case conn := <-accepted:
			res = &Result{Link: newLink(Host, conn)}
		case <-timer.C:
			res = &Result{Err: &FailedError{Role: Host, Reason: ReasonTimeout, Err: fmt.Errorf("no guest within %s", cfg.AcceptTimeout)}}
		case <-gctx.Done():
			if ctx.Err() != nil {
				res = &Result{Err: &FailedError{Role: Host, Reason: ReasonCanceled, Err: ctx.Err()}}
			}
		}
		// stop listening before anyone learns the outcome
		close(resolved)
		_ = srv.Close()
		if res != nil {
			a.finish(*res)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		a.fail(ReasonIO, err)
	}
}

// guest dials the host, retrying refused connections while attempts remain.
func (a *Attempt) guest(ctx context.Context, cfg Config) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.ConnectTimeout,
		NetDialContext:   (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	}
	url := "ws://" + a.addr + cfg.Path

	for i := 1; ; i++ {
		dctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		conn, resp, err := dialer.DialContext(dctx, url, nil)
		cancel()
		if err == nil {
			a.finish(Result{Link: newLink(Guest, conn)})
			return
		}
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		reason := classify(ctx, err, resp)
		log.Debug().Str("component", "link").Int("attempt", i).Str("reason", string(reason)).Err(err).Msg("dial failed")
		if reason != ReasonRefused || !errors.Is(err, syscall.ECONNREFUSED) || i >= cfg.ConnectAttempts {
			a.fail(reason, err)
			return
		}

		select {
		case <-time.After(cfg.ConnectTimeout):
		case <-ctx.Done():
			a.fail(ReasonCanceled, ctx.Err())
			return
		}
	}
}

func classify(ctx context.Context, err error, resp *http.Response) Reason {
	if ctx.Err() != nil {
		return ReasonCanceled
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonRefused
	}
	if resp != nil && resp.StatusCode == http.StatusConflict {
		return ReasonRefused
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return ReasonTimeout
	}
	return ReasonIO
}
