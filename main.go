// Command mergewalk starts the Mergewalk game server.
//
// It supports two commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags and a yaml settings file control host/port, rules and saves
// directories, the save-slot storage backend, log level, and optional ngrok
// tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/openmapgames/mergewalk/api"
	"github.com/openmapgames/mergewalk/game/config"
	"github.com/openmapgames/mergewalk/game/service"
	"github.com/openmapgames/mergewalk/game/session"
	"github.com/openmapgames/mergewalk/transport/mcp"
	"github.com/openmapgames/mergewalk/transport/websocket"
)

const (
	version = "1.0.0"
	appName = "Mergewalk Server"
)

func main() {
	// Load .env if present; a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	cmd := &cli.Command{
		Name:    "mergewalk",
		Usage:   "token-merging walk game server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "path to the yaml settings file",
				Sources: cli.EnvVars("MERGEWALK_SETTINGS"),
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "override the listen host from settings",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "override the listen port from settings",
			},
			&cli.StringFlag{
				Name:    "rules-dir",
				Usage:   "override the rules directory from settings",
				Sources: cli.EnvVars("MERGEWALK_RULES_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "force debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server with REST API, WebSocket, and /mcp endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "expose the server through an ngrok tunnel",
						Sources: cli.EnvVars("NGROK_ENABLED"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "run an MCP stdio server, reusing a running HTTP server when one exists",
				Action: runStdioMCP,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal("command failed", "error", err)
	}
}

// loadSettings merges the settings file with command-line overrides and
// applies the resulting log level.
func loadSettings(cmd *cli.Command) (config.ServerSettings, error) {
	settings, err := config.LoadSettings(cmd.String("settings"))
	if err != nil {
		return settings, err
	}

	if host := cmd.String("host"); host != "" {
		settings.Host = host
	}
	if port := cmd.String("port"); port != "" {
		settings.Port = port
	}
	if dir := cmd.String("rules-dir"); dir != "" {
		settings.RulesDir = dir
	}
	if cmd.Bool("debug") {
		settings.LogLevel = "debug"
	}

	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		return settings, fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	log.SetLevel(level)

	return settings, nil
}

// initializeServices wires the rule manager, save-slot persistence, session
// manager, websocket hub, and game service. The returned cleanup closes the
// storage backend.
func initializeServices(settings config.ServerSettings) (service.GameService, *websocket.Hub, *session.Manager, func(), error) {
	rulesManager, err := config.NewManager(settings.RulesDir)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create rules manager: %w", err)
	}

	var persistence session.SlotPersistence
	cleanup := func() {}
	switch settings.Storage {
	case "sqlite":
		store, err := session.NewSQLitePersistence(settings.DBPath)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		persistence = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn("failed to close sqlite store", "error", err)
			}
		}
		log.Info("save slots on sqlite", "path", settings.DBPath)
	default:
		store, err := session.NewFilePersistence(settings.SavesDir)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to create save directory: %w", err)
		}
		persistence = store
		log.Info("save slots on files", "dir", settings.SavesDir)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, rulesManager)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn("failed to load persisted sessions", "error", err)
	}
	log.Info("sessions restored", "count", sessionManager.Count())

	hub := websocket.NewHub()
	go hub.Run()

	gameService := service.NewGameService(sessionManager, rulesManager, hub, hub)

	go sessionCleanupRoutine(sessionManager)

	return gameService, hub, sessionManager, cleanup, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window. Their save slots stay on disk.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			log.Info("cleaned up expired sessions", "count", removed)
		}
	}
}

// mcpHandler mounts a JSON-over-HTTP MCP endpoint backed by the given client.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log.Info("starting", "app", appName, "version", version)

	gameService, hub, sessionManager, cleanup, err := initializeServices(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	apiServer := api.NewServer(gameService, hub)

	addr := net.JoinHostPort(settings.Host, settings.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("HTTP server listening", "addr", addr)
		log.Info("REST API", "url", fmt.Sprintf("http://%s/api", addr))
		log.Info("WebSocket", "url", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr))
		log.Info("MCP endpoint", "url", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter, cmd.String("ngrok-domain"))
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", "error", err)
	}

	// Flush every live game to its slot before exiting.
	if err := sessionManager.SaveAllSessions(); err != nil {
		log.Warn("failed to save sessions on shutdown", "error", err)
	}

	wg.Wait()
	log.Info("server stopped")
	return nil
}

// runNgrokTunnel serves the router through a public ngrok endpoint until ctx
// is cancelled. Failures are logged and leave the local server untouched.
func runNgrokTunnel(ctx context.Context, handler http.Handler, domain string) {
	authToken := os.Getenv("NGROK_AUTHTOKEN")
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Warn("failed to start ngrok tunnel", "error", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	log.Info("ngrok tunnel established", "url", tun.URL())

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Warn("ngrok server error", "error", err)
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It tries to reuse an external API at
// the configured address; if unavailable, it starts a minimal internal HTTP
// API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	externalURL := fmt.Sprintf("http://%s", net.JoinHostPort("localhost", settings.Port))
	log.Info("checking for external API server", "url", externalURL)

	baseURL := ""
	testClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := testClient.Get(externalURL + "/health"); err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info("external API server found, using it for MCP", "url", externalURL)
		baseURL = externalURL
	}

	if baseURL == "" {
		log.Info("no external API server found, starting internal HTTP server")

		gameService, hub, _, cleanup, err := initializeServices(settings)
		if err != nil {
			return err
		}
		defer cleanup()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Info("internal HTTP server for MCP stdio", "addr", internalAddr)

		apiServer := api.NewServer(gameService, hub)
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Warn("internal HTTP server error", "error", err)
			}
		}()

		// Give the listener a beat to come up before the first tool call.
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Info("MCP stdio server ready", "backend", baseURL)
	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
