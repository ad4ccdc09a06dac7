package client

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/notificacion"
)

const (
	stateStopped = "stopped"
	statePolling = "polling"

	eventStart = "start"
	eventStop  = "stop"

	checkPath = "/api/notificaciones/check"
)

type (
	// BackoffPolicy gives the wait before the next check after `retry` consecutive failures.
	BackoffPolicy interface {
		Delay(retry int) time.Duration
	}

	FixedBackoff time.Duration

	// ExponentialBackoff doubles Base on each failure, up to Max when set.
	ExponentialBackoff struct {
		Base time.Duration
		Max  time.Duration
	}
)

func (b FixedBackoff) Delay(int) time.Duration { return time.Duration(b) }

func (b ExponentialBackoff) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := time.Duration(float64(b.Base) * math.Pow(2, float64(retry-1)))
	if b.Max > 0 && (d > b.Max || d <= 0) {
		return b.Max
	}
	return d
}

type PollerConfig struct {
	Interval   time.Duration
	MaxRetries int
	Backoff    BackoffPolicy
}

// Poller checks for new notifications on a single rescheduled timer while a session is active.
type Poller struct {
	client *Client
	list   *NotificationList
	logger core.Logger
	conf   PollerConfig

	mu         sync.Mutex
	machine    *fsm.FSM
	lastCheck  time.Time
	lastID     int
	retryCount int
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewPoller(c *Client, list *NotificationList, logger core.Logger, conf PollerConfig) *Poller {
	if conf.Interval <= 0 {
		conf.Interval = 10 * time.Second
	}
	if conf.MaxRetries <= 0 {
		conf.MaxRetries = 3
	}
	if conf.Backoff == nil {
		conf.Backoff = FixedBackoff(5 * time.Second)
	}

	p := &Poller{client: c, list: list, logger: logger, conf: conf}
	p.machine = fsm.NewFSM(
		stateStopped,
		fsm.Events{
			{Name: eventStart, Src: []string{stateStopped}, Dst: statePolling},
			{Name: eventStop, Src: []string{statePolling}, Dst: stateStopped},
		},
		fsm.Callbacks{
			"enter_" + statePolling: func(_ context.Context, _ *fsm.Event) { p.logger.Debug("notification polling started") },
			"enter_" + stateStopped: func(_ context.Context, _ *fsm.Event) { p.logger.Debug("notification polling stopped") },
		},
	)
	return p
}

func (p *Poller) IsPolling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Is(statePolling)
}

func (p *Poller) RetryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retryCount
}

func (p *Poller) LastCheck() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCheck
}

// LastID is the id cursor the next check resumes from.
func (p *Poller) LastID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastID
}

// Start checks right away and then once per interval until stopped. It is a no-op while polling.
// Polling also ends when ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.machine.Is(statePolling) {
		return nil
	}
	if err := p.machine.Event(ctx, eventStart); err != nil {
		return errors.Wrap(err, "starting poller")
	}

	p.retryCount = 0
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go p.run(runCtx, done)
	return nil
}

// Stop cancels polling and waits for the running check, if any, to return.
func (p *Poller) Stop() {
	if done := p.Halt(); done != nil {
		<-done
	}
}

// Halt cancels polling without waiting. It is safe to call from within a check,
// e.g. by a 401 handler; the returned channel closes once the loop has exited.
func (p *Poller) Halt() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.halt(p.done)
}

// halt stops the loop owning done; p.mu must be held.
func (p *Poller) halt(done chan struct{}) <-chan struct{} {
	if done == nil || p.done != done {
		return nil
	}
	p.cancel()
	p.cancel, p.done = nil, nil
	if err := p.machine.Event(context.Background(), eventStop); err != nil {
		p.logger.Warn(fmt.Sprintf("stopping poller: %v", err), err)
	}
	return done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		p.mu.Lock()
		p.halt(done)
		p.mu.Unlock()
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		next, ok := p.tick(ctx)
		if !ok {
			return
		}
		timer.Reset(next)
	}
}

// tick runs one check and decides when the next one happens; ok is false when polling must end.
func (p *Poller) tick(ctx context.Context) (next time.Duration, ok bool) {
	_, err := p.CheckNow(ctx)
	switch {
	case err == nil:
		return p.conf.Interval, true
	case ctx.Err() != nil:
		return 0, false
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrUnauthorized):
		p.logger.Info(fmt.Sprintf("notification polling ended: %v", err))
		return 0, false
	}

	retries := p.RetryCount()
	if retries >= p.conf.MaxRetries {
		p.logger.Warn(fmt.Sprintf("notification polling ended after %d failed checks: %v", retries, err), err)
		return 0, false
	}
	p.logger.Debug(fmt.Sprintf("notification check failed (%d/%d): %v", retries, p.conf.MaxRetries, err))
	return p.conf.Backoff.Delay(retries), true
}

// CheckNow asks the server for the notifications stored since the last successful check
// and merges them into the list.
func (p *Poller) CheckNow(ctx context.Context) (notificacion.CheckResult, error) {
	var res notificacion.CheckResult
	if !p.client.Session().IsAuthenticated() {
		return res, ErrNoSession
	}

	query := map[string]string{}
	p.mu.Lock()
	if p.lastID > 0 {
		query["lastId"] = strconv.Itoa(p.lastID)
	}
	if !p.lastCheck.IsZero() {
		query["lastCheck"] = p.lastCheck.UTC().Format(time.RFC3339Nano)
	}
	p.mu.Unlock()
	if err := p.client.Do(ctx, rest.Get, checkPath, query, nil, &res); err != nil {
		if ctx.Err() == nil && !errors.Is(err, ErrUnauthorized) {
			p.mu.Lock()
			p.retryCount++
			p.mu.Unlock()
		}
		return res, err
	}
	// halted meanwhile, e.g. by a logout
	if err := ctx.Err(); err != nil {
		return res, err
	}

	p.mu.Lock()
	p.retryCount = 0
	p.lastCheck = res.ServerTime
	if res.LastID > p.lastID {
		p.lastID = res.LastID
	}
	p.mu.Unlock()

	if _, err := p.list.Add(res.Notifications...); err != nil {
		return res, err
	}
	return res, p.list.SetUnread(res.UnreadCount)
}

// Reset forgets the last check, so the next one fetches from the beginning.
func (p *Poller) Reset() {
	p.mu.Lock()
	p.lastCheck, p.lastID, p.retryCount = time.Time{}, 0, 0
	p.mu.Unlock()
}
