package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bharat-ai/bharatai/internal/chatui"
	"github.com/bharat-ai/bharatai/internal/tui"
)

var (
	apiURL   string
	apiToken string
)

func newClient() (*chatui.Client, error) {
	if apiURL == "" {
		apiURL = os.Getenv("BHARATAI_API_URL")
	}
	if apiToken == "" {
		apiToken = os.Getenv("BHARATAI_API_TOKEN")
	}
	if apiURL == "" {
		return nil, fmt.Errorf("api url is required (--api-url or BHARATAI_API_URL)")
	}
	if apiToken == "" {
		return nil, fmt.Errorf("api token is required (--token or BHARATAI_API_TOKEN)")
	}
	return chatui.NewClient(apiURL, apiToken), nil
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	session := chatui.NewSession()
	chats := chatui.NewChatList()
	orc := chatui.NewOrchestrator(client, session, chats, nil, nil)

	model := tui.NewModel(orc, session, chats)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runChats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	chats, err := client.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("listing chats: %w", err)
	}
	if len(chats) == 0 {
		fmt.Println("No chats yet.")
		return nil
	}

	title := color.New(color.FgCyan, color.Bold)
	meta := color.New(color.Faint)
	for _, c := range chats {
		title.Println(c.Title)
		meta.Printf("  %s · %d messages · updated %s\n", c.ID, c.MessageCount, c.UpdatedAt.Format("2006-01-02 15:04"))
		if c.LastMessage != "" {
			fmt.Printf("  %s\n", c.LastMessage)
		}
		fmt.Println()
	}
	return nil
}

var (
	loginEmail      string
	loginName       string
	loginProvider   string
	loginProviderID string
)

func runLogin(cmd *cobra.Command, args []string) error {
	if apiURL == "" {
		apiURL = os.Getenv("BHARATAI_API_URL")
	}
	if apiURL == "" {
		return fmt.Errorf("api url is required (--api-url or BHARATAI_API_URL)")
	}

	body, err := json.Marshal(map[string]string{
		"email":      loginEmail,
		"name":       loginName,
		"provider":   loginProvider,
		"providerId": loginProviderID,
	})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	url := strings.TrimRight(apiURL, "/") + "/api/auth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("exchanging token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token exchange failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}

	color.New(color.FgGreen, color.Bold).Println("Signed in.")
	fmt.Printf("Token: %s\n", out.Token)
	fmt.Println("Export it as BHARATAI_API_TOKEN or pass it with --token.")
	return nil
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "bharatai",
		Short: "Terminal client for the BharatAI chat service",
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL")
	root.PersistentFlags().StringVar(&apiToken, "token", "", "API token")

	root.AddCommand(&cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat UI",
		RunE:  runChat,
	})
	root.AddCommand(&cobra.Command{
		Use:   "chats",
		Short: "List your chats",
		RunE:  runChats,
	})

	login := &cobra.Command{
		Use:   "login",
		Short: "Exchange an OAuth identity for an API token",
		RunE:  runLogin,
	}
	login.Flags().StringVar(&loginEmail, "email", "", "account email")
	login.Flags().StringVar(&loginName, "name", "", "display name")
	login.Flags().StringVar(&loginProvider, "provider", "google", "OAuth provider")
	login.Flags().StringVar(&loginProviderID, "provider-id", "", "provider user id")
	_ = login.MarkFlagRequired("email")
	_ = login.MarkFlagRequired("provider-id")
	root.AddCommand(login)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
