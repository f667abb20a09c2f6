// Package main boots the playlist view accounting HTTP service.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"
	loginfra "github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/logger"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string

	id, _ = os.Hostname()
)

func newApp(logger log.Logger, hs *http.Server, pool *dispatcher.Pool) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
			pool,
		),
	)
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	confPath, err := configloader.ParseConfPath(fs, os.Args[1:])
	if err != nil {
		panic(err)
	}

	cfgLoader, cleanupConfig, err := configloader.LoadBootstrap(confPath, Name, Version)
	if err != nil {
		panic(err)
	}
	defer cleanupConfig()

	loggr, err := loginfra.NewLogger(cfgLoader.LoggerCfg)
	if err != nil {
		panic(err)
	}
	Name = cfgLoader.Service.Name
	Version = cfgLoader.Service.Version

	// Select the storage backend; both graphs share everything above the repositories.
	build := wirePostgresApp
	if cfgLoader.Runtime.Database.UseMemory() {
		build = wireMemoryApp
	}
	app, cleanupApp, err := build(context.Background(), cfgLoader, loggr)
	if err != nil {
		panic(err)
	}
	defer cleanupApp()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
