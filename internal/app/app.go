package app

import (
	"log/slog"
	"os"
	"time"

	routerApp "github.com/icut-app/icut/internal/app/router"
	"github.com/icut-app/icut/internal/lib/logger/sl"
	"github.com/icut-app/icut/internal/storage/sqlite"
)

type App struct {
	Router  routerApp.App
	storage *sqlite.Storage
}

func New(
	log *slog.Logger,
	address string,
	timeout time.Duration,
	storagePath string,
	tokenTTL time.Duration,
	secret []byte,
	rootPass []byte,
	refsFile string,
) *App {
	storage, err := sqlite.New(storagePath)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	routerApp := routerApp.New(
		log,
		storage,
		address,
		timeout,
		tokenTTL,
		secret,
		rootPass,
		refsFile,
	)

	return &App{
		Router:  *routerApp,
		storage: storage,
	}
}

func (a *App) Stop() {
	a.Router.Stop()
	a.storage.Stop()
}
