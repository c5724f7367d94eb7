// Command SemUPS runs the bulls-and-cows duel server: a TCP server that
// pairs players into two-player guessing sessions, enforces turn order,
// and lets a dropped player rejoin an interrupted game.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/Henaniomu/SemUPS/config"
	"github.com/Henaniomu/SemUPS/logger"
	"github.com/Henaniomu/SemUPS/server"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to YAML config file")
		addr       = pflag.String("addr", "", "listen address override")
		port       = pflag.Int("port", 0, "listen port override")
		maxConns   = pflag.Int("max-conns", -1, "connection cap override (0 = unlimited)")
		logLevel   = pflag.String("log-level", "", "log level override (debug|info|warn|error)")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *maxConns >= 0 {
		cfg.MaxConnections = *maxConns
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	log.Info("starting",
		logger.F("addr", cfg.Addr()),
		logger.F("host_ip", localIPv4()),
		logger.F("max_conns", cfg.MaxConnections),
		logger.F("idle_timeout", cfg.IdleTimeout().String()))

	hub := server.NewHub(cfg, log)
	srv := server.NewServer(cfg, log, hub)
	if err := srv.Start(); err != nil {
		log.Error("startup failed", logger.F("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", logger.F("error", err))
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

func buildLogger(cfg config.Config) (logger.Logger, error) {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		return logger.NewWithFile("semups", cfg.LogFile, level)
	}

	return logger.New("semups", level), nil
}

// localIPv4 returns the first non-loopback IPv4 address, for the startup
// banner; players on the LAN need it to connect.
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}

	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}

	return "127.0.0.1"
}
