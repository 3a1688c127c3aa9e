package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/storefront"
)

// ServerDependencies holds all dependencies needed for the storefront server
type ServerDependencies struct {
	ServerConfig config.StorefrontConfig
	HomeHandler  http.Handler
	LoginHandler http.Handler
	CartHandler  http.Handler
}

// NewServerDependencies builds the storefront handlers from configuration
func NewServerDependencies(cfg config.StorefrontConfig) (ServerDependencies, error) {
	store := storefront.NewCartStore(cfg.Products)
	home, err := storefront.NewHomeHandler(store, cfg.RenderDelay)
	if err != nil {
		return ServerDependencies{}, fmt.Errorf("failed to load home page template: %w", err)
	}

	return ServerDependencies{
		ServerConfig: cfg,
		HomeHandler:  home,
		LoginHandler: storefront.NewLoginHandler(cfg.Username, cfg.Password),
		CartHandler:  storefront.NewCartHandler(store),
	}, nil
}

// RunServe starts the storefront and blocks until it is stopped
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, nil)
}

// NewMux routes requests to the storefront handlers
func NewMux(deps ServerDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", deps.HomeHandler)
	mux.Handle("/api/login", deps.LoginHandler)
	mux.Handle("/api/cart", deps.CartHandler)
	return mux
}

// StartServer binds the storefront port and serves in the background
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	addr := fmt.Sprintf(":%s", deps.ServerConfig.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           NewMux(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on %s", listener.Addr().String())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Storefront error: %v", err)
		}
	}()

	return listener, server, nil
}

// WaitForShutdown blocks until SIGINT or SIGTERM arrives on shutdown, then stops
// the storefront within 30 seconds. A nil channel listens to the process signals.
func WaitForShutdown(server *http.Server, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout is WaitForShutdown with a caller-chosen grace period
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	log.Printf("Received signal: %v, shutting down storefront...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// in-flight requests outlived the timeout
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop storefront: %w", err)
		}
	}

	log.Println("Storefront stopped")
	return nil
}
