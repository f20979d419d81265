package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence2md/localdump"
)

func boolPtr(b bool) *bool { return &b }

func TestBindFlags(t *testing.T) {
	var (
		url, user, listen string
		tokenCmd          []string
		pandoc            bool
		timeout           time.Duration
	)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&url, "confluence-url", "", "")
	cmd.Flags().StringVar(&user, "auth-username", "", "")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8501", "")
	cmd.Flags().StringSliceVar(&tokenCmd, "auth-token-cmd", []string{}, "")
	cmd.Flags().BoolVar(&pandoc, "pandoc", false, "")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "")

	// the command line beats the config file
	require.NoError(t, cmd.Flags().Parse([]string{"--auth-username", "cli@acme.com"}))

	err := bindFlags(cmd, YamlConfig{
		Pandoc:        boolPtr(true),
		ConfluenceURL: "https://acme.atlassian.net/wiki",
		AuthUsername:  "yaml@acme.com",
		AuthTokenCmd:  []string{"pass", "show", "atlassian"},
		Timeout:       "45s",
		// no such flag on this command, ignored
		Out: "/tmp/out",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://acme.atlassian.net/wiki", url)
	assert.Equal(t, "cli@acme.com", user)
	assert.Equal(t, "127.0.0.1:8501", listen)
	assert.Equal(t, []string{"pass", "show", "atlassian"}, tokenCmd)
	assert.True(t, pandoc)
	assert.Equal(t, 45*time.Second, timeout)
}

func TestBindFlagsBadValue(t *testing.T) {
	var timeout time.Duration
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "")

	err := bindFlags(cmd, YamlConfig{Timeout: "soon"})
	assert.ErrorContains(t, err, "bad value for timeout")
}

func TestBindEnv(t *testing.T) {
	var url, user string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&url, "confluence-url", "", "")
	cmd.Flags().StringVar(&user, "auth-username", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--confluence-url", "https://cli.atlassian.net/wiki"}))

	t.Setenv("CONFLUENCE_URL", "https://env.atlassian.net/wiki")
	t.Setenv("CONFLUENCE_USER", "env@acme.com")
	require.NoError(t, bindEnv(cmd))

	assert.Equal(t, "https://cli.atlassian.net/wiki", url)
	assert.Equal(t, "env@acme.com", user)

	// env counts as set, so the config file can't override it afterwards
	require.NoError(t, bindFlags(cmd, YamlConfig{AuthUsername: "yaml@acme.com"}))
	assert.Equal(t, "env@acme.com", user)
}

func TestAuthToken(t *testing.T) {
	defer func() { AuthTokenCmd = nil }()

	AuthTokenCmd = []string{"echo", "from-cmd"}
	t.Setenv("CONFLUENCE_API_TOKEN", "from-env")
	token, err := authToken()
	require.NoError(t, err)
	assert.Equal(t, "from-cmd", token)

	AuthTokenCmd = nil
	token, err = authToken()
	require.NoError(t, err)
	assert.Equal(t, "from-env", token)

	t.Setenv("CONFLUENCE_API_TOKEN", "")
	_, err = authToken()
	assert.Error(t, err)

	AuthTokenCmd = []string{"false"}
	_, err = authToken()
	assert.ErrorContains(t, err, "auth-token-cmd")
}

func TestBaseURL(t *testing.T) {
	defer func() { ConfluenceURL, ConfluenceInstance = "", "" }()

	ConfluenceURL, ConfluenceInstance = "", ""
	_, err := baseURL()
	assert.Error(t, err)

	ConfluenceInstance = "acme"
	base, err := baseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://acme.atlassian.net/wiki", base)

	ConfluenceURL = "https://wiki.acme.com"
	base, err = baseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.acme.com", base)
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := serve(ctx, "127.0.0.1:0", http.NotFoundHandler())
	assert.NoError(t, err)
}

func TestExportCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/rest/api/content/100", func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "me@acme.com", user)
		assert.Equal(t, "t0k3n", pass)
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"id":      "100",
			"title":   "Q3 Report",
			"version": map[string]any{"number": 2},
			"body": map[string]any{"storage": map[string]any{
				"value": `<p><ac:image><ri:attachment ri:filename="chart.png" /></ac:image></p>`,
			}},
		}))
	})
	mux.HandleFunc("/wiki/download/attachments/100/chart.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNG"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	config := filepath.Join(dir, "confluence2md.yaml")
	require.NoError(t, os.WriteFile(config, []byte("auth-username: me@acme.com\nfront-matter: true\n"), 0644))
	t.Setenv("CONFLUENCE_URL", srv.URL+"/wiki")
	t.Setenv("CONFLUENCE_API_TOKEN", "t0k3n")
	out := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"export", "--config", config, "--page-id", "100", "--out", out})
	require.NoError(t, rootCmd.Execute())

	mdPath := filepath.Join(out, "Q3 Report.md")
	assert.Contains(t, stdout.String(), "Saved "+mdPath)
	assert.Contains(t, stdout.String(), "Attachments "+filepath.Join(out, "attachments")+" (1 files)")

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "![chart.png](attachments/chart.png)")

	header, ok, err := localdump.ReadHeader(mdPath)
	require.NoError(t, err)
	require.True(t, ok, "front-matter from the config file should apply")
	assert.Equal(t, 2, header.Version)
	assert.Equal(t, config, ConfigActual)
}

func TestDescribeBuild(t *testing.T) {
	vcs := func(rev, modified string) []debug.BuildSetting {
		return []debug.BuildSetting{{Key: "vcs.revision", Value: rev}, {Key: "vcs.modified", Value: modified}}
	}

	tests := []struct {
		name    string
		stamped string
		info    debug.BuildInfo
		want    string
	}{
		{name: "plain go build", info: debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, want: "devel"},
		{name: "go install @version", info: debug.BuildInfo{Main: debug.Module{Version: "v1.2.0"}}, want: "v1.2.0"},
		{name: "stamped wins", stamped: "v2.0.0", info: debug.BuildInfo{Main: debug.Module{Version: "v1.2.0"}}, want: "v2.0.0"},
		{
			name: "clean checkout",
			info: debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: vcs("3f2a9c1d0e4b5a6978", "false")},
			want: "rev-3f2a9c1d0e4b",
		},
		{
			name: "dirty checkout",
			info: debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: vcs("3f2a9c1", "true")},
			want: "rev-3f2a9c1-dirty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			assert.Equal(t, tt.want, describeBuild(tt.stamped, &info))
		})
	}
}
