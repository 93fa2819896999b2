package tests

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/icut-app/icut/internal/config"
)

// Actual environment
var (
	_        = godotenv.Load("../.env")
	cfg      = config.MustLoadPath(os.Getenv("CONFIG_PATH"))
	rootPass = os.Getenv("ROOT_PASS")
	secret   = os.Getenv("SECRET")
)
