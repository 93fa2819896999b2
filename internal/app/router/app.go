package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/icut-app/icut/internal/storage/sqlite"

	authSrv "github.com/icut-app/icut/internal/service/auth"
	jwtSrv "github.com/icut-app/icut/internal/service/jwt"
	librarySrv "github.com/icut-app/icut/internal/service/library"
	projectSrv "github.com/icut-app/icut/internal/service/project"
	refsSrv "github.com/icut-app/icut/internal/service/refs"
	timelineSrv "github.com/icut-app/icut/internal/service/timeline"

	authCtr "github.com/icut-app/icut/internal/controller/auth"
	jwtCtr "github.com/icut-app/icut/internal/controller/jwt"
	libraryCtr "github.com/icut-app/icut/internal/controller/library"
	projectCtr "github.com/icut-app/icut/internal/controller/project"
	refsCtr "github.com/icut-app/icut/internal/controller/refs"
	timelineCtr "github.com/icut-app/icut/internal/controller/timeline"
)

type App struct {
	log     *slog.Logger
	address string
	app     *fiber.App
}

// New returns configured router.App
func New(
	log *slog.Logger,
	storage *sqlite.Storage,
	address string,
	timeout time.Duration,
	tokenTTL time.Duration,
	secret []byte,
	rootPass []byte,
	refsFile string,
) *App {
	// Create services
	jwt := jwtSrv.New(secret)

	rootPassHash, err := bcrypt.GenerateFromPassword(rootPass, bcrypt.DefaultCost)
	if err != nil {
		panic("invalid root password")
	}
	auth := authSrv.New(
		log,
		jwt,
		rootPassHash,
		tokenTTL,
	)

	project := projectSrv.New(
		log,
		storage,
	)

	library := librarySrv.New(
		log,
		storage,
	)

	timeline := timelineSrv.New(
		log,
		storage,
		storage,
		storage,
	)

	refs := refsSrv.New(
		log,
		refsFile,
	)

	// Create controller helper
	jwtCtr := jwtCtr.New(secret)

	app := fiber.New()

	// Mount controllers to an app
	app.Mount("/login", authCtr.New(timeout, auth))
	app.Mount("/projects", projectCtr.New(project, jwtCtr))
	app.Mount("/assets", libraryCtr.New(library, jwtCtr))
	app.Mount("/timeline", timelineCtr.New(timeline, jwtCtr))
	app.Mount("/refs", refsCtr.New(refs, jwtCtr))

	return &App{
		log:     log,
		address: address,
		app:     app,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	return a.app.Listen(a.address)
}

func (a *App) Stop() {
	a.app.Shutdown()
}
