// Command chessroyale starts the realtime chess matchmaking server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, WebSocket play, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs the MCP server over stdio for local agent clients
//
// Configuration comes from the environment (see the config package), with
// flags overriding individual values. Optional ngrok tunneling exposes the
// server publicly during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/lucasmn/chessroyale/api"
	"github.com/lucasmn/chessroyale/config"
	"github.com/lucasmn/chessroyale/game/matchmaking"
	"github.com/lucasmn/chessroyale/game/rules"
	"github.com/lucasmn/chessroyale/game/service"
	"github.com/lucasmn/chessroyale/game/session"
	"github.com/lucasmn/chessroyale/storage"
	"github.com/lucasmn/chessroyale/storage/sqlite"
	"github.com/lucasmn/chessroyale/transport/mcp"
	"github.com/lucasmn/chessroyale/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Chess Royale Server"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
	fmt.Fprintf(os.Stderr, "Available modes:\n")
	fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
	fmt.Fprintf(os.Stderr, "  stdio-mcp, mcp   Run MCP server over stdio\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -db \"\" mcp         # Run MCP stdio server without persistence\n", os.Args[0])
}

// main parses configuration, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment
	host := flag.String("host", cfg.Host, "HTTP server host")
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (empty disables persistence)")
	debug := flag.Bool("debug", cfg.Debug, "Enable debug logging")
	version := flag.Bool("version", false, "Show version information")
	ngrokEnabled := flag.Bool("ngrok", cfg.NgrokEnabled, "Enable ngrok tunnel")
	ngrokDomain := flag.String("ngrok-domain", cfg.NgrokDomain, "Custom ngrok domain (optional)")

	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg.Host = *host
	cfg.Port = *port
	cfg.DBPath = *dbPath
	cfg.Debug = *debug
	cfg.NgrokEnabled = *ngrokEnabled
	cfg.NgrokDomain = *ngrokDomain

	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	gameService, store, err := initializeServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer store.Close()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(gameService)

	case "server", "http":
		runHTTPServer(cfg, gameService)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices wires the store, matchmaking queue, session registry,
// rules engine, and game service together.
func initializeServices(cfg *config.Config) (service.GameService, storage.GameStore, error) {
	var store storage.GameStore = storage.NopStore{}
	if cfg.DBPath != "" {
		s, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open game store: %w", err)
		}
		store = s
		log.Printf("Game store: %s", cfg.DBPath)
	} else {
		log.Println("Persistence disabled; games will not be archived")
	}

	gameService := service.NewGameService(
		matchmaking.NewQueue(),
		session.NewRegistry(),
		rules.NewChessEngine(),
		store,
	)

	return gameService, store, nil
}

// runHTTPServer starts the HTTP server with the REST API, WebSocket hub, and
// an /mcp endpoint. If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(cfg *config.Config, gameService service.GameService) {
	// Create WebSocket hub
	hub := websocket.NewHub(gameService, cfg.DefaultRating)
	go hub.Run()

	// Create API server
	apiServer := api.NewServer(gameService, hub)

	addr := cfg.Addr()

	// Create MCP server for the /mcp endpoint
	mcpServer := mcp.NewServer(gameService)

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Start ngrok tunnel if enabled
	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()

			authToken := os.Getenv("NGROK_AUTHTOKEN")
			if authToken == "" {
				log.Println("WARNING: Ngrok enabled but NGROK_AUTHTOKEN is not set")
				return
			}

			log.Println("Starting ngrok tunnel...")

			var tunnel ngrokConfig.Tunnel
			if cfg.NgrokDomain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
				log.Printf("Using custom ngrok domain: %s", cfg.NgrokDomain)
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				log.Printf("Failed to start ngrok tunnel: %v", err)
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					log.Printf("Failed to close ngrok tunnel: %v", err)
				}
			}()

			ngrokURL := tun.URL()
			log.Printf("Ngrok tunnel established: %s", ngrokURL)
			log.Printf("  REST API (ngrok): %s/api", ngrokURL)
			log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
			log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				log.Printf("Ngrok server error: %v", err)
			}
			log.Println("Ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop accepting matches and let pending archival writes finish.
	if err := gameService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Game service shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runStdioMCP serves the MCP tools over stdio, blocking until EOF.
func runStdioMCP(gameService service.GameService) {
	mcpServer := mcp.NewServer(gameService)

	log.Println("MCP stdio server ready")
	if err := mcpserver.ServeStdio(mcpServer.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
