package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fadakar85/bazaar/config"
	"github.com/fadakar85/bazaar/internal/app"
	"github.com/fadakar85/bazaar/internal/webapi"
	"github.com/fadakar85/bazaar/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h        bool
	initdb   bool
	conffile string
)

func init() {
	flag.StringVar(&conffile, "c", "bazaar.yml", "config yaml file")
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate the database schema, then exit")
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		os.Exit(0)
	}

	appConfig := config.LoadConfig(conffile)
	application := app.NewApplication(appConfig)
	if err := application.Init(appConfig); err != nil {
		fmt.Fprintf(os.Stderr, "application init failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(application)
	webapi.Register()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			zap.L().Info("shutting down", zap.String("signal", sig.String()))
			return webserver.Shutdown()
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
