//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint string
	Username    string
	Password    string
	IdopsPath   string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint: os.Getenv("IDOPS_IT_API"),
		Username:    os.Getenv("IDOPS_IT_USER"),
		Password:    os.Getenv("IDOPS_IT_PASSWORD"),
		IdopsPath:   getIdopsPath(),
		Verbose:     os.Getenv("IDOPS_IT_VERBOSE") == "true",
	}
}

// getIdopsPath determines the path to the idops binary.
func getIdopsPath() string {
	if path := os.Getenv("IDOPS_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../idops", "./idops", "../idops"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "idops"
}

// SkipIfMissingConfig skips the test when no backend or binary is available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIEndpoint == "" || config.Username == "" {
		t.Skip("IDOPS_IT_API and IDOPS_IT_USER not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.IdopsPath); err != nil {
		t.Skipf("idops binary not found at %s, skipping integration test", config.IdopsPath)
	}
}

// CommandRunner runs idops with an isolated home directory.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	home   string
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{config: config, t: t, home: t.TempDir()}
}

// Run executes an idops command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes an idops command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	args = append(args, "--api", runner.config.APIEndpoint, "--no-color")

	cmd := exec.Command(runner.config.IdopsPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+runner.home,
		"IDOPS_SESSION_FILE="+filepath.Join(runner.home, "session.yml"),
	)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.IdopsPath, strings.Join(args, " "))
	}

	err := cmd.Run()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdoutBuf.String(), stderrBuf.String())
	}

	return stdoutBuf.String(), stderrBuf.String(), err
}

// Login signs in with the configured operator.
func (runner *CommandRunner) Login() (string, string, error) {
	return runner.Run("login", "--username", runner.config.Username, "--password", runner.config.Password)
}

// AssertJSONOutput verifies command output is valid JSON.
func AssertJSONOutput(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	decoded := map[string]interface{}{}

	err := json.Unmarshal([]byte(strings.TrimSpace(output)), &decoded)
	if err != nil {
		t.Errorf("Output is not a JSON object: %v\n%s", err, output)
	}

	return decoded
}
