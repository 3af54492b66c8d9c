package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordcraft/internal/api"
	"github.com/mcoot/wordcraft/internal/factory"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/testutil"
	"github.com/mcoot/wordcraft/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "wordcraft-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wordcraft")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) savedToken(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(r.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs a real server wired the way cmd/server wires it
func startTestServer(t *testing.T) (string, *factory.App) {
	t.Helper()

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{
		Logger: logger,
		AuthConfig: auth.Config{
			TokenSecret:    []byte("e2e-secret"),
			BcryptCost:     bcrypt.MinCost,
			AdminUsernames: []string{"root"},
		},
	})
	require.NoError(t, err)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		PlayerService: app.PlayerService,
		WorldService:  app.WorldService,
		Gateway:       app.Gateway,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		PlayerService: app.PlayerService,
		StaticDir:     filepath.Join(findProjectRoot(t), "internal/web/static"),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/ws", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = "127.0.0.1"
	serverConfig.Port = 0
	server := api.NewServer(mux, serverConfig, logger)
	server.OnShutdown(app.Gateway.Shutdown)
	require.NoError(t, server.Listen())

	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	t.Cleanup(func() {
		_ = server.Shutdown(context.Background())
	})
	return serverURL, app
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// gameMessage is one reply printed by "send" in JSON mode
type gameMessage struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeMessages(t *testing.T, output string) []gameMessage {
	t.Helper()
	var msgs []gameMessage
	dec := json.NewDecoder(strings.NewReader(output))
	for {
		var msg gameMessage
		err := dec.Decode(&msg)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err, output)
		msgs = append(msgs, msg)
	}
}

type playerResponse struct {
	Username  string   `json:"username"`
	Role      string   `json:"role"`
	Online    bool     `json:"online"`
	Inventory []string `json:"inventory"`
}

func TestCLIHealth(t *testing.T) {
	serverURL, _ := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("health")
	require.NoError(t, err, output)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestCLIRegisterThenResume(t *testing.T) {
	serverURL, _ := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("send", "register", "alice", "password1")
	require.NoError(t, err, output)
	msgs := decodeMessages(t, output)
	require.NotEmpty(t, msgs)
	assert.Equal(t, "auth_success", msgs[0].Type)
	require.NotEmpty(t, cli.savedToken(t))

	// The saved token logs the next invocation straight in
	output, err = cli.run("send", "inventory")
	require.NoError(t, err, output)
	msgs = decodeMessages(t, output)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Your inventory is empty.", msgs[0].Message)

	output, err = cli.run("player", "me")
	require.NoError(t, err, output)
	var me playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "player", me.Role)
}

func TestCLILoginSavesToken(t *testing.T) {
	serverURL, app := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	_, err := app.AuthService.Register(context.Background(), "root", "password1")
	require.NoError(t, err)

	output, err := cli.run("player", "login", "--user", "root", "--pass", "password1")
	require.NoError(t, err, output)
	require.NotEmpty(t, cli.savedToken(t))

	output, err = cli.run("player", "show", "root")
	require.NoError(t, err, output)
	var player playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "admin", player.Role)
	assert.False(t, player.Online)

	output, err = cli.run("player", "logout")
	require.NoError(t, err, output)
	assert.Empty(t, cli.savedToken(t))
}

func TestCLIBadLogin(t *testing.T) {
	serverURL, _ := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("player", "login", "--user", "nobody", "--pass", "password1")
	require.Error(t, err)
	assert.Contains(t, output, "PLAYER_NOT_FOUND")
}

func TestCLIWhoAndStatus(t *testing.T) {
	serverURL, app := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	// Hold a session open in-process so someone is online
	app.Sessions.CreateSession("held")
	msgs := app.Router.Route(context.Background(), "held", "register bob password1")
	require.Len(t, msgs, 1)

	output, err := cli.run("who")
	require.NoError(t, err, output)
	var who struct {
		Count   int `json:"count"`
		Players []struct {
			DisplayName string `json:"display_name"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &who))
	require.Equal(t, 1, who.Count)
	assert.Equal(t, "bob", who.Players[0].DisplayName)

	output, err = cli.run("status")
	require.NoError(t, err, output)
	var status struct {
		PlayersOnline int `json:"players_online"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, 1, status.PlayersOnline)
}
