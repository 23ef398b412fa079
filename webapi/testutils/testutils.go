// Package testutils runs the full HTTP API over the in-memory store for
// handler tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	infra_eventbus "github.com/finsova/fundrequest/infra/eventbus"
	"github.com/finsova/fundrequest/infra/repository/memory"
	"github.com/finsova/fundrequest/pkg/app"
	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/pkg/domain/user"
	usersvc "github.com/finsova/fundrequest/pkg/service/user"
	"github.com/finsova/fundrequest/webapi"
	"github.com/finsova/fundrequest/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// Password is used for every account the suite creates.
const Password = "password123"

// E2ETestSuite serves the API from a fresh in-memory store per test.
type E2ETestSuite struct {
	suite.Suite
	App        *app.App
	Bus        *infra_eventbus.MemoryEventBus
	app        *fiber.App
	store      *memory.Store
	Admin      *user.User
	AdminToken string
}

// TestConfig is the configuration the suite runs with. Rate limiting is off.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{},
	}
}

// NewApp builds the HTTP app for cfg over a new memory store.
func NewApp(cfg *config.App) (*app.App, *fiber.App, *memory.Store, *infra_eventbus.MemoryEventBus) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	bus := infra_eventbus.NewWithMemory(logger, infra_eventbus.WithRecording())
	a := app.New(&config.Deps{Store: store, EventBus: bus, Logger: logger, Config: cfg})
	return a, webapi.SetupApp(a), store, bus
}

func (s *E2ETestSuite) SetupTest() {
	s.App, s.app, s.store, s.Bus = NewApp(TestConfig())
	s.Admin = s.RegisterUser("root", user.RoleAdmin)
	s.AdminToken = s.LoginUser(s.Admin.Username)
}

func (s *E2ETestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

// RegisterUser creates an account with Password directly through the service.
func (s *E2ETestSuite) RegisterUser(username string, role user.Role) *user.User {
	u, err := s.App.UserService.Register(context.Background(), usersvc.RegisterInput{
		FullName:      "Test " + username,
		Username:      username,
		Email:         username + "@example.com",
		Role:          string(role),
		Country:       "India",
		ContactNumber: "+91 98765 43210",
		IsActive:      true,
		Password:      Password,
	})
	s.Require().NoError(err)
	return u
}

// CreateTestUser registers a random non-admin account through POST /users
// and returns it with its token.
func (s *E2ETestSuite) CreateTestUser() (*user.User, string) {
	username := "user_" + uuid.NewString()[:8]
	body := fmt.Sprintf(
		`{"fullName":"Test User","username":%q,"email":%q,"role":"user","country":"India","contactNumber":"+91 1","password":%q}`,
		username, username+"@example.com", Password,
	)
	resp := s.MakeRequest(fiber.MethodPost, "/users", body, s.AdminToken)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data user.User `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&created))
	return &created.Data, s.LoginUser(username)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// LoginUser logs in with Password and returns the JWT.
func (s *E2ETestSuite) LoginUser(identity string) string {
	body := fmt.Sprintf(`{"identity":%q,"password":%q}`, identity, Password)
	resp := s.MakeRequest(fiber.MethodPost, "/auth/login", body, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	s.Require().NotEmpty(response.Data.Token)
	return response.Data.Token
}

// DecodeResponse reads the success envelope into data.
func (s *E2ETestSuite) DecodeResponse(resp *http.Response, data any) common.Response {
	env := common.Response{Data: data}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return env
}

// DecodeProblem reads an RFC 9457 body.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) common.ProblemDetails {
	var pd common.ProblemDetails
	s.Require().Equal(common.ProblemContentType, resp.Header.Get(fiber.HeaderContentType))
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}
