package syncengine_test

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/frahmantamala/access-bridge/internal/syncengine"
	"github.com/frahmantamala/access-bridge/internal/terminal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// countingRegistry is safe for reads from the test goroutine while the
// scheduler drives flows from its own.
type countingRegistry struct {
	mu    sync.Mutex
	count int
}

func (r *countingRegistry) ListActive() ([]*terminal.Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return []*terminal.Terminal{}, nil
}

func (r *countingRegistry) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

var _ = Describe("Scheduler", func() {
	var (
		registry  *countingRegistry
		scheduler *syncengine.Scheduler
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	newScheduler := func(pushInterval, pullInterval time.Duration) *syncengine.Scheduler {
		registry = &countingRegistry{}
		users := &mockUserStore{}
		templates := &mockTemplateStore{}
		logs := newMockLogStore()
		audit := &mockAuditLog{}
		factory := func(term *terminal.Terminal) syncengine.Channel {
			return newMockChannel(term.Name, term.TerminalID)
		}
		engine := syncengine.NewEngine(users, templates, logs, registry, audit, factory, nil, testLogger)
		return syncengine.NewScheduler(engine, pushInterval, pullInterval, testLogger)
	}

	It("should run both flows once at startup and stop cleanly", func() {
		scheduler = newScheduler(time.Hour, time.Hour)

		go scheduler.Run()
		scheduler.Stop()

		// One registry consult per flow: initial push plus initial pull.
		Expect(registry.calls()).To(Equal(2))
	})

	It("should keep running flows on the tick until stopped", func() {
		scheduler = newScheduler(5*time.Millisecond, time.Hour)

		go scheduler.Run()
		Eventually(registry.calls, "2s", "5ms").Should(BeNumerically(">=", 4))
		scheduler.Stop()
	})

	It("should not run any further flow after Stop returns", func() {
		scheduler = newScheduler(5*time.Millisecond, time.Hour)

		go scheduler.Run()
		Eventually(registry.calls, "2s", "5ms").Should(BeNumerically(">=", 3))
		scheduler.Stop()

		settled := registry.calls()
		Consistently(registry.calls, "50ms", "10ms").Should(Equal(settled))
	})
})
