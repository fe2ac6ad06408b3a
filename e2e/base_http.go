package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header before running fn as a subtest.
func (s *BaseHTTPSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	s.Run(name, fn)
}

// Call sends a JSON request and decodes the response into out when given.
// It returns the status code.
func (s *BaseHTTPSuite) Call(method, path, token string, body, out any) int {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	reqBody := buf.String()

	req, err := http.NewRequest(method, strings.TrimRight(s.Config.ServerAddr, "/")+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err, "request to %s failed", path)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nREQUEST:")
		fmt.Fprintln(&logBuilder, reqBody)
		fmt.Fprintln(&logBuilder, "RESPONSE:")
		fmt.Fprintln(&logBuilder, string(raw))
	}
	s.T().Log(logBuilder.String())

	if out != nil && len(raw) > 0 && resp.StatusCode < 300 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

type account struct {
	Token  string `json:"token"`
	UserID int    `json:"auth_user_id"`
}

// Register creates an account with a unique email so the suite can run
// against a long-lived server.
func (s *BaseHTTPSuite) Register(first, last string) account {
	var acc account
	code := s.Call(http.MethodPost, "/auth/register", "", map[string]string{
		"email":      fmt.Sprintf("%s.%s@e2e.io", first, uuid.NewString()[:8]),
		"password":   "e2e-password",
		"name_first": first,
		"name_last":  last,
	}, &acc)
	s.Require().Equal(http.StatusCreated, code)
	return acc
}
