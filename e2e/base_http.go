package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite carries the HTTP and websocket plumbing shared by the
// scenarios: colorized step headers, JSON round-trips and token handling.
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
		s.T().Skip("SERVER_ADDR not set, skipping e2e scenarios")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header so the scenario reads as a script in logs.
func (s *BaseHTTPSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// PostJSON sends the body and decodes the response into out (when non-nil).
func (s *BaseHTTPSuite) PostJSON(t *testing.T, path, token string, body, out any) int {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://%s%s", s.Config.ServerAddr, path), bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req, out)
}

func (s *BaseHTTPSuite) GetJSON(t *testing.T, path, token string, out any) int {
	req, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("http://%s%s", s.Config.ServerAddr, path), nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req, out)
}

func (s *BaseHTTPSuite) do(t *testing.T, req *http.Request, out any) int {
	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nRESPONSE:")
		fmt.Fprintln(&logBuilder, string(raw))
	}
	t.Log(logBuilder.String())

	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

// Dial opens an authenticated websocket session and consumes the greeting.
func (s *BaseHTTPSuite) Dial(t *testing.T, token string) *websocket.Conn {
	url := fmt.Sprintf("ws://%s/api/ws?token=%s", s.Config.ServerAddr, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to open websocket at "+url)

	var greeting map[string]any
	s.Require().NoError(conn.ReadJSON(&greeting))
	s.Require().Equal("session_created", greeting["event"])
	t.Log("Websocket session", greeting["connId"])
	return conn
}

// WaitFor reads frames until one matches the wanted event kind, discarding
// the rest. Fails the suite if the deadline passes first.
func (s *BaseHTTPSuite) WaitFor(conn *websocket.Conn, kind string, timeout time.Duration) map[string]any {
	deadline := time.Now().Add(timeout)
	s.Require().NoError(conn.SetReadDeadline(deadline))
	for {
		var frame map[string]any
		err := conn.ReadJSON(&frame)
		s.Require().NoError(err, "no %q frame before deadline", kind)
		if frame["event"] == kind {
			_ = conn.SetReadDeadline(time.Time{})
			return frame
		}
	}
}
