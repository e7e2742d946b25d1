package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/access-bridge/internal/deviceapi"
	"github.com/frahmantamala/access-bridge/internal/syncengine"
	"github.com/frahmantamala/access-bridge/internal/user"
	"github.com/spf13/cobra"
)

var (
	syncDevice string
	syncStart  string
	syncEnd    string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync flow once",
}

var syncUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Push users and face templates to the terminals",
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer closeDatabases(deps)

		window, err := parseWindow(syncStart, syncEnd)
		if err != nil {
			log.Fatalf("invalid window: %v", err)
		}

		summary, err := deps.Engine.PushUsers(syncengine.PushOptions{
			Window:     window,
			DeviceName: syncDevice,
		})
		if err != nil {
			log.Fatalf("push flow failed: %v", err)
		}

		fmt.Printf("Synced %d users and %d face templates to %d device(s)\n",
			summary.UsersSynced, summary.TemplatesSynced, summary.Devices)
	},
}

var syncLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Pull offline access logs from the terminals",
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer closeDatabases(deps)

		summary, err := deps.Engine.PullLogs(syncengine.PullOptions{
			DeviceName: syncDevice,
		})
		if err != nil {
			log.Fatalf("pull flow failed: %v", err)
		}

		fmt.Printf("Saved %d access logs from %d device(s), %d failure(s)\n",
			summary.LogsSaved, summary.Devices, summary.Failures)
	},
}

var syncTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity to every configured terminal",
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer closeDatabases(deps)

		terminals, err := deps.Registry.ListAll()
		if err != nil {
			log.Fatalf("failed to load terminals: %v", err)
		}

		failures := 0
		for _, term := range terminals {
			client := deviceapi.NewClient(term, deps.DeviceConfig, deps.Logger)
			fmt.Printf("Testing %s (%s)... ", term.Name, client.BaseURL())
			if err := client.Ping(); err != nil {
				failures++
				fmt.Printf("failed: %v\n", err)
				continue
			}
			fmt.Println("ok")
		}

		if failures > 0 {
			log.Fatalf("%d of %d terminal(s) unreachable", failures, len(terminals))
		}
	},
}

const windowDateLayout = "2006-01-02"

func parseWindow(startStr, endStr string) (*user.Window, error) {
	if startStr == "" && endStr == "" {
		return nil, nil
	}

	var w user.Window
	if startStr != "" {
		t, err := time.Parse(windowDateLayout, startStr)
		if err != nil {
			return nil, fmt.Errorf("start date %q: %w", startStr, err)
		}
		w.Start = &t
	}
	if endStr != "" {
		t, err := time.Parse(windowDateLayout, endStr)
		if err != nil {
			return nil, fmt.Errorf("end date %q: %w", endStr, err)
		}
		w.End = &t
	}
	return &w, nil
}

func init() {
	syncCmd.PersistentFlags().StringVar(&syncDevice, "device", "", "restrict the flow to one named terminal")
	syncUsersCmd.Flags().StringVar(&syncStart, "start", "", "only users registered on or after this date (YYYY-MM-DD)")
	syncUsersCmd.Flags().StringVar(&syncEnd, "end", "", "only users registered on or before this date (YYYY-MM-DD)")

	syncCmd.AddCommand(syncUsersCmd)
	syncCmd.AddCommand(syncLogsCmd)
	syncCmd.AddCommand(syncTestCmd)
}
