package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/access-bridge/internal/core/events"
	"github.com/frahmantamala/access-bridge/internal/syncengine"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync daemon",
	Long:  `Run the bridge continuously: push users and face templates on the user interval, pull offline access logs on the log interval. Both flows also run once at startup.`,
	Run: func(cmd *cobra.Command, args []string) {
		runDaemon()
	},
}

func runDaemon() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer closeDatabases(deps)

	subscribeEventLogging(deps)

	scheduler := syncengine.NewScheduler(deps.Engine,
		deps.Config.Sync.UserPushInterval,
		deps.Config.Sync.LogPullInterval,
		deps.Logger)

	deps.Logger.Info("sync daemon starting",
		"user_push_interval", deps.Config.Sync.UserPushInterval,
		"log_pull_interval", deps.Config.Sync.LogPullInterval)

	go scheduler.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	deps.Logger.Info("received signal, stopping scheduler...", "signal", sig)
	scheduler.Stop()
	deps.Logger.Info("sync daemon stopped")
}

// subscribeEventLogging attaches a logging consumer for every engine event
// so the daemon's log carries per-cycle outcomes even when nothing else
// listens on the bus.
func subscribeEventLogging(deps *Dependencies) {
	logEvent := func(ctx context.Context, event events.Event) error {
		deps.Logger.Info("sync event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	}

	deps.Bus.Subscribe(events.EventTypePushCompleted, logEvent)
	deps.Bus.Subscribe(events.EventTypePullCompleted, logEvent)
	deps.Bus.Subscribe(events.EventTypeDeviceFailed, logEvent)
}
