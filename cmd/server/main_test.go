package main_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/finsova/fundrequest/infra/initializer"
	"github.com/finsova/fundrequest/pkg/app"
	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/webapi"
	"github.com/finsova/fundrequest/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	exitVal := m.Run()
	os.Exit(exitVal)
}

type MainTestSuite struct {
	testutils.E2ETestSuite
}

func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (s *MainTestSuite) TestStartServer_FromInitializer() {
	cfg := testutils.TestConfig()
	cfg.Log = &config.Log{Level: int(slog.LevelError), Format: "text"}
	cfg.DB = &config.DB{}
	cfg.Store = &config.Store{Driver: config.DriverMemory}
	cfg.EventBus = &config.EventBus{Driver: config.DriverMemory}
	cfg.Redis = &config.Redis{}
	cfg.Admin = &config.Admin{
		Username:      "boot",
		Password:      testutils.Password,
		Email:         "boot@finsova.local",
		FullName:      "Boot Admin",
		Country:       "India",
		ContactNumber: "-",
	}
	cfg.Server.ShutdownTimeout = time.Second

	deps, err := initializer.InitializeDependencies(cfg)
	s.Require().NoError(err)
	defer func() { s.NoError(initializer.Close(deps)) }()

	fiberApp := webapi.SetupApp(app.New(deps))

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *MainTestSuite) TestProtectedRoute_Unauthorized() {
	resp := s.MakeRequest(http.MethodGet, "/transactions", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusBadRequest, resp.StatusCode, "missing token is a malformed request")

	resp = s.MakeRequest(http.MethodGet, "/transactions", "", "not-a-jwt")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *MainTestSuite) TestNotFoundRoute() {
	resp := s.MakeRequest(http.MethodGet, "/doesnotexist", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *MainTestSuite) TestLoginRoute_BadRequest() {
	resp := s.MakeRequest(http.MethodPost, "/auth/login", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
