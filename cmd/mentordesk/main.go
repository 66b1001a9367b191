package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/techwomen-moldova/mentordesk/internal/cli"
	"github.com/techwomen-moldova/mentordesk/internal/config"
	"github.com/techwomen-moldova/mentordesk/internal/dashboard"
	"github.com/techwomen-moldova/mentordesk/internal/engine"
	"github.com/techwomen-moldova/mentordesk/internal/forms"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/internal/moderation"
	"github.com/techwomen-moldova/mentordesk/internal/profiles"
	"github.com/techwomen-moldova/mentordesk/internal/settings"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := "DASHBOARD"
	if len(os.Args) > 1 {
		command = strings.ToUpper(os.Args[1])
	}
	args := os.Args[min(len(os.Args), 2):]

	switch command {
	case "DASHBOARD":
		runDashboard(ctx, cfg)

	case "PUSH_STATE", "PUSH-STATE":
		// copy the local state file into a daemon
		addr := argOr(args, cfg.StateAddr)
		if addr == "" {
			log.Fatal("Usage: mentordesk push-state <daemon-addr>")
		}
		local, err := sdk.OpenLocal(cfg.DataDir)
		if err != nil {
			log.Fatal(err)
		}
		remote, err := sdk.Connect(ctx, addr, cfg.HTTPTimeout)
		if err != nil {
			log.Fatalf("Failed to connect to %s: %v", addr, err)
		}
		n, err := engine.Migrate(local, remote)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Copied %d keys to %s\n", n, addr)

	case "PULL_STATE", "PULL-STATE":
		addr := argOr(args, cfg.StateAddr)
		if addr == "" {
			log.Fatal("Usage: mentordesk pull-state <daemon-addr>")
		}
		remote, err := sdk.Connect(ctx, addr, cfg.HTTPTimeout)
		if err != nil {
			log.Fatalf("Failed to connect to %s: %v", addr, err)
		}
		local, err := sdk.OpenLocal(cfg.DataDir)
		if err != nil {
			log.Fatal(err)
		}
		n, err := engine.Migrate(remote, local)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Copied %d keys from %s into %s\n", n, addr, cfg.DataDir)

	case "HELP", "-H", "--HELP":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func runDashboard(ctx context.Context, cfg *config.Config) {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	store, err := sdk.Open(ctx, cfg.StateAddr, cfg.DataDir, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}

	var publisher sdk.ProfilePublisher
	if cfg.PublishURL != "" {
		publisher = sdk.NewClient(cfg.PublishURL, cfg.HTTPTimeout)
	} else {
		repo, err := profiles.NewFileRepository(cfg.SiteDataDir)
		if err != nil {
			log.Fatalf("Failed to open profile collections: %v", err)
		}
		publisher = profiles.NewPublisher(repo, logger.With("component", "publisher"))
	}

	ctrl := dashboard.NewController(dashboard.Options{
		Source:    forms.NewClient(cfg.FormsAPIURL, cfg.HTTPTimeout, logger.With("component", "forms")),
		Tracker:   moderation.NewTracker(store),
		Settings:  settings.NewManager(store, cfg.SettingsKey),
		Publisher: publisher,
		Mode:      dashboard.ParsePublishMode(cfg.PublishMode),
		Log:       logger.With("component", "dashboard"),
	})
	defer ctrl.Close()

	cli.Run(ctx, ctrl, os.Stdin, os.Stdout)
}

func argOr(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func printUsage() {
	fmt.Println("mentordesk - moderation dashboard for mentor and mentee submissions")
	fmt.Println("\nUsage:")
	fmt.Println("  mentordesk                       start the interactive dashboard")
	fmt.Println("  mentordesk push-state [addr]     copy local moderation state to a daemon")
	fmt.Println("  mentordesk pull-state [addr]     copy a daemon's moderation state locally")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  MENTORDESK_DATA_DIR       local state directory (default: ./data)")
	fmt.Println("  MENTORDESK_SITE_DATA_DIR  mentors.json/mentees.json directory (default: ./public/data)")
	fmt.Println("  MENTORDESK_STATE_ADDR     daemon holding shared moderation state")
	fmt.Println("  MENTORDESK_PUBLISH_URL    daemon that publishes profiles (default: write files locally)")
	fmt.Println("  MENTORDESK_PUBLISH_MODE   auto or manual (default: auto)")
	fmt.Println("  MENTORDESK_SETTINGS_KEY   passphrase used to encrypt the stored token")
	fmt.Println("  NETLIFY_API_URL           forms API root")
}
