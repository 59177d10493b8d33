package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/hackmentor/hackmentor/internal/client"
	"github.com/hackmentor/hackmentor/internal/tui"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOrDefault("BACKEND_URL", "http://localhost:3000"), "backend base URL")
	email := flag.String("email", os.Getenv("CHAT_EMAIL"), "sign in with this email (guest mode if empty)")
	password := flag.String("password", os.Getenv("CHAT_PASSWORD"), "password for -email")
	flag.Parse()

	api := client.New(strings.TrimRight(*server, "/"))
	conv := client.NewConversation(api)

	ctx := context.Background()
	username := ""
	if *email != "" {
		account, err := api.SignIn(ctx, *email, *password)
		if err != nil {
			log.Fatalf("sign in failed: %v", err)
		}
		username = account.Username
		if err := conv.SetAuthenticated(ctx, true); err != nil {
			log.Fatalf("failed to load sessions: %v", err)
		}
	}

	program := tea.NewProgram(tui.New(conv, username), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
