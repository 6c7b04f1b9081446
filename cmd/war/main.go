package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/minaorangina/war/client"
	"github.com/minaorangina/war/config"
	"github.com/minaorangina/war/server"
	"github.com/minaorangina/war/transport"
	"github.com/pterm/pterm"
)

const usage = `usage: war [flags] server [host] [port]
       war [flags] client [host] [port]
       war [flags] clients [host] [port] [count]

host and port default to WAR_HOST and WAR_PORT. Flags:
`

type flags struct {
	ws          bool
	concurrency int
	logLevel    string
	httpAddr    string
	timeout     time.Duration
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	var f flags
	fs := flag.NewFlagSet("war", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.BoolVar(&f.ws, "ws", false, "clients connect over websocket to ws://host:port/ws")
	fs.IntVar(&f.concurrency, "concurrency", cfg.Concurrency, "most clients playing at once")
	fs.StringVar(&f.logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&f.httpAddr, "http", cfg.HTTPAddr, "address for the websocket and stats endpoints, empty to disable")
	fs.DurationVar(&f.timeout, "timeout", cfg.IOTimeout, "bound on every read and write, 0 to disable")
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if err := applyArgs(&cfg, args); err != nil {
		pterm.Error.Println(err)
		fs.Usage()
		os.Exit(2)
	}

	logger := newLogger(f.logLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "server":
		err = runServer(ctx, cfg, f, logger)
	case "client":
		err = runClients(ctx, cfg, f, 1, logger)
	case "clients":
		count := 1
		if len(args) > 3 {
			count, err = strconv.Atoi(args[3])
			if err != nil || count < 0 {
				pterm.Error.Printfln("invalid client count %q", args[3])
				os.Exit(2)
			}
		}
		err = runClients(ctx, cfg, f, count, logger)
	default:
		fs.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("war exited", "error", err)
		os.Exit(1)
	}
}

// applyArgs overrides host and port from the positional arguments
func applyArgs(cfg *config.Config, args []string) error {
	if len(args) > 1 {
		cfg.Host = args[1]
	}
	if len(args) > 2 {
		port, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid port %q", args[2])
		}
		cfg.Port = port
	}
	return cfg.Validate()
}

func newLogger(level string) *slog.Logger {
	l := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)

	switch strings.ToLower(level) {
	case "debug":
		l = l.WithLevel(pterm.LogLevelDebug)
	case "warn":
		l = l.WithLevel(pterm.LogLevelWarn)
	case "error":
		l = l.WithLevel(pterm.LogLevelError)
	}

	return slog.New(pterm.NewSlogHandler(l))
}

func runServer(ctx context.Context, cfg config.Config, f flags, logger *slog.Logger) error {
	opts := []server.Option{server.WithLogger(logger)}
	if f.timeout > 0 {
		opts = append(opts, server.WithIOTimeout(f.timeout))
	}
	srv := server.NewServer(opts...)
	defer srv.Close()

	if f.httpAddr != "" {
		httpServer := &http.Server{
			Addr:    f.httpAddr,
			Handler: srv,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		}
		go func() {
			logger.Info("serving websocket players and stats", "addr", f.httpAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()
	}

	pterm.Info.Printfln("War server on %s, ctrl+c to stop", cfg.Addr())
	return srv.ListenAndServe(ctx, cfg.Addr())
}

func runClients(ctx context.Context, cfg config.Config, f flags, count int, logger *slog.Logger) error {
	addr := cfg.Addr()
	opts := []client.Option{client.WithLogger(logger)}

	var connOpts []transport.Option
	if f.timeout > 0 {
		connOpts = append(connOpts, transport.WithTimeout(f.timeout))
	}
	if f.ws {
		addr = "ws://" + addr + "/ws"
		opts = append(opts, client.WithDialer(transport.DialWS(connOpts...)))
	} else {
		opts = append(opts, client.WithDialer(transport.DialTCP(connOpts...)))
	}

	c := client.New(addr, opts...)

	start := time.Now()
	completed := c.RunMany(ctx, count, f.concurrency)
	elapsed := time.Since(start)

	summary := pterm.TableData{
		{"Clients", "Completed", "Failed", "Elapsed"},
		{strconv.Itoa(count), strconv.Itoa(completed), strconv.Itoa(count - completed), elapsed.Round(time.Millisecond).String()},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(summary).Render(); err != nil {
		return err
	}

	if completed < count {
		pterm.Warning.Printfln("%d of %d clients completed", completed, count)
	} else {
		pterm.Success.Printfln("%d clients completed", completed)
	}
	return nil
}
