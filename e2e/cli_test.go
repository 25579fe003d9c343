package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
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

	"github.com/mcoot/cadastro/internal/api"
	"github.com/mcoot/cadastro/internal/factory"
	"github.com/mcoot/cadastro/internal/identity/local"
	"github.com/mcoot/cadastro/internal/web"
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
	binaryPath := filepath.Join(projectRoot, "bin", "cadastro-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cadastro")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
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

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application with the local identity backend
	app, err := factory.New(factory.Config{
		Logger:              logger,
		LocalIdentityConfig: local.Config{BcryptCost: bcrypt.MinCost},
	})
	require.NoError(t, err)

	// Create routers
	projectRoot := findProjectRoot(t)
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		RegistrationService: app.RegistrationService,
		AuthService:         app.AuthService,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:              logger,
		RegistrationService: app.RegistrationService,
		AuthService:         app.AuthService,
		StaticDir:           filepath.Join(projectRoot, "internal/web/static"),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
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

// Response types for JSON parsing
type registrationResponse struct {
	Alert struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"alert"`
	Profile profileResponse `json:"profile"`
}

type profileResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type sessionResponse struct {
	Account struct {
		UID         string `json:"uid"`
		DisplayName string `json:"display_name"`
	} `json:"account"`
	SessionToken string `json:"session_token"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RegistrationFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("register", "--email", "Alice@Example.com", "--name", "Alice", "--password", "secret1")
	require.NoError(t, err, "output: %s", output)

	var reg registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reg))
	assert.Equal(t, "Cadastro realizado com sucesso!", reg.Alert.Message)
	assert.Equal(t, "alice@example.com", reg.Profile.Email)
	assert.Len(t, reg.Profile.UID, local.UIDLength)

	// Login (token is saved in token file)
	output, err = cli.run("login", "--email", "alice@example.com", "--password", "secret1")
	require.NoError(t, err, "output: %s", output)

	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, reg.Profile.UID, session.Account.UID)
	assert.Equal(t, "Alice", session.Account.DisplayName)

	// Profile
	output, err = cli.run("profile")
	require.NoError(t, err, "output: %s", output)

	var profile profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &profile))
	assert.Equal(t, reg.Profile, profile)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Profile without auth
	output, err := cli.run("profile")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	// Weak password is rejected by the local identity backend
	output, err = cli.run("register", "--email", "bob@example.com", "--name", "Bob", "--password", "123")
	assert.Error(t, err)
	assert.Contains(t, output, "WEAK_PASSWORD")

	// Duplicate email
	_, err = cli.run("register", "--email", "carol@example.com", "--name", "Carol", "--password", "secret1")
	require.NoError(t, err)
	output, err = cli.run("register", "--email", "carol@example.com", "--name", "Carol", "--password", "secret1")
	assert.Error(t, err)
	assert.Contains(t, output, "Este e-mail já está em uso")
}
