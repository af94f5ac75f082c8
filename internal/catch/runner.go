package catch

import (
	"context"
	"sync"
	"time"

	"github.com/faideww/fishon/internal/clock"
)

type request struct {
	fn    func(m *Machine, now time.Time) bool
	reply chan bool
}

// Runner owns a Machine on a single goroutine. Ticks and player input are
// serialized through its loop, so timer callbacks and input never race.
type Runner struct {
	m      *Machine
	clk    clock.Clock
	onView func(View)

	reqs     chan request
	done     chan struct{}
	stopChan  chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewRunner wraps m. onView, when set, is called from the runner goroutine
// whenever the view changes and must not block.
func NewRunner(m *Machine, clk clock.Clock, onView func(View)) *Runner {
	return &Runner{
		m:        m,
		clk:      clock.OrReal(clk),
		onView:   onView,
		reqs:     make(chan request),
		done:     make(chan struct{}),
		stopChan: make(chan struct{}),
	}
}

// Start launches the loop. Input methods block until it is running. Only the
// first call has any effect, and none after Stop.
func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.loop(ctx)
	})
}

// Stop tears the machine down and waits for the loop to exit. A runner that
// was never started is marked finished so input methods return at once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.startOnce.Do(func() { close(r.done) })
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.done)

	ticker := time.NewTicker(r.m.cfg.Tick)
	defer ticker.Stop()

	last := r.m.View()
	r.publish(last)

	for {
		select {
		case <-ctx.Done():
			r.teardown()
			return
		case <-r.stopChan:
			r.teardown()
			return
		case req := <-r.reqs:
			req.reply <- req.fn(r.m, r.clk.Now())
		case <-ticker.C:
			r.m.Advance(r.clk.Now())
		}

		if v := r.m.View(); v != last {
			last = v
			r.publish(v)
		}
	}
}

func (r *Runner) teardown() {
	r.m.Teardown()
	r.publish(r.m.View())
}

func (r *Runner) publish(v View) {
	if r.onView != nil {
		r.onView(v)
	}
}

// do runs fn on the runner goroutine. It returns false once the loop has
// exited.
func (r *Runner) do(fn func(m *Machine, now time.Time) bool) bool {
	req := request{fn: fn, reply: make(chan bool, 1)}
	select {
	case r.reqs <- req:
	case <-r.done:
		return false
	}
	return <-req.reply
}

func (r *Runner) Cast() bool {
	return r.do(func(m *Machine, now time.Time) bool { return m.Start(now) })
}

func (r *Runner) Move(dir Direction) bool {
	return r.do(func(m *Machine, _ time.Time) bool { return m.Move(dir) })
}

func (r *Runner) SetCatcher(pos float64) bool {
	return r.do(func(m *Machine, _ time.Time) bool { return m.SetCatcher(pos) })
}

func (r *Runner) Commit() bool {
	return r.do(func(m *Machine, now time.Time) bool { return m.Commit(now) })
}

// View returns the machine's current view, or the zero View once stopped.
func (r *Runner) View() View {
	var v View
	r.do(func(m *Machine, now time.Time) bool {
		m.Advance(now)
		v = m.View()
		return true
	})
	return v
}
