package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// executeCommand runs the root command with args and returns everything it
// wrote to stdout and stderr.
func executeCommand(args ...string) (string, error) {
	if args == nil {
		args = []string{}
	}

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// isolateEnv keeps the test away from any settings file on the machine.
func isolateEnv(t *testing.T) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

// pointAtTestServer serves the backend from handler and configures the
// environment so commands talk to it.
func pointAtTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	isolateEnv(t)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("INVITEKIT_API_BASE_URL", server.URL)
	t.Setenv("INVITEKIT_API_KEY", "sk-test")
	t.Setenv("INVITEKIT_COMPONENT_ID", "widget-123")
	t.Setenv("INVITEKIT_LOG_LEVEL", "error")

	return server
}
