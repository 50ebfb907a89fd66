package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yanqian/web-summarizer/internal/domain/target"
	"github.com/yanqian/web-summarizer/internal/pageagent"
	"github.com/yanqian/web-summarizer/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "pageagent",
		Usage: "serve the visible text of one document to the summarizer orchestrator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Required: true, Usage: "document URL, fetched on every text request", EnvVars: []string{"PAGEAGENT_URL"}},
			&cli.StringFlag{Name: "file", Usage: "answer from a local copy of the document instead of fetching --url"},
			&cli.StringFlag{Name: "listen", Value: "127.0.0.1:9001", Usage: "address the agent listens on", EnvVars: []string{"PAGEAGENT_LISTEN"}},
			&cli.StringFlag{Name: "advertise", Usage: "agent URL given to the orchestrator (default http://<listen>)"},
			&cli.StringFlag{Name: "orchestrator", Usage: "orchestrator base URL to register with", EnvVars: []string{"PAGEAGENT_ORCHESTRATOR"}},
			&cli.BoolFlag{Name: "active", Value: true, Usage: "make this document the active target"},
			&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("pageagent stopped with error: %v", err)
	}
}

func run(c *cli.Context) error {
	logg := logger.NewWithWriter(os.Stdout, c.String("log-level")).With("component", "pageagent")

	docURL := c.String("url")
	source, err := buildSource(c.String("file"), docURL)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", c.String("listen"))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{
		Handler:     pageagent.NewRouter(pageagent.NewAgent(source, logg)),
		ReadTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logg.Info("page agent listening", "address", listener.Addr().String(), "document", docURL)
		errCh <- server.Serve(listener)
	}()

	if base := c.String("orchestrator"); base != "" {
		advertise := c.String("advertise")
		if advertise == "" {
			advertise = "http://" + listener.Addr().String()
		}
		regCtx, cancel := context.WithTimeout(c.Context, 5*time.Second)
		registered, err := pageagent.Register(regCtx, nil, base, target.RegisterRequest{URL: docURL, AgentURL: advertise, Active: c.Bool("active")})
		cancel()
		if err != nil {
			logg.Error("target registration failed", "orchestrator", base, "error", err)
		} else {
			logg.Info("target registered", "target_id", registered.ID, "active", registered.Active)
		}
	}

	select {
	case <-c.Context.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func buildSource(file, docURL string) (pageagent.Source, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return pageagent.ReaderSource(f)
	}
	return pageagent.NewURLSource(&http.Client{Timeout: 10 * time.Second}, docURL), nil
}
