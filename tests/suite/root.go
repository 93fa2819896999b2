package suite

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"github.com/icut-app/icut/internal/config"
)

// Actual environment
var (
	_              = godotenv.Load("../.env")
	cfg            = config.MustLoadPath(os.Getenv("CONFIG_PATH"))
	rootPass       = os.Getenv("ROOT_PASS")
	passDefaultLen = 10
)

// RootLogin logins root user
func RootLogin() (string, error) {
	c := http.Client{Timeout: cfg.Timeout}

	bodyReq, err := json.Marshal(map[string]string{
		"login": "root",
		"pass":  rootPass,
	})
	if err != nil {
		return "", err
	}

	url := "http://" + cfg.Address + "/login"

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(bodyReq))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}

	defer resp.Body.Close()
	bodyResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var form struct {
		Token string `json:"token"`
	}

	if err = json.Unmarshal(bodyResp, &form); err != nil {
		return "", err
	}

	return form.Token, nil
}

func RandomFakePassword() string {
	return gofakeit.Password(true, true, true, true, false, passDefaultLen)
}

func RandomProjectName() string {
	return gofakeit.AppName() + " " + gofakeit.Word()
}

// TempMediaFile writes a small throwaway file that can
// be imported as an asset and bookmarked.
func TempMediaFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(gofakeit.Sentence(8)), 0o644); err != nil {
		return "", err
	}

	return path, nil
}
