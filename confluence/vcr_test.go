package confluence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

func TestRecorderReplaysWithoutServer(t *testing.T) {
	cassetteName := filepath.Join(t.TempDir(), "confluence")
	ctx := context.Background()

	srv := fakeWiki(t)
	wikiURL := srv.URL + "/wiki"

	// first pass: record real traffic
	api := newTestAPI(t, srv, "t0k3n")
	stop, err := api.UseRecorder(cassetteName, recorder.ModeRecordOnly)
	require.NoError(t, err)

	page, err := api.FetchPage(ctx, PageQuery{ID: "100"})
	require.NoError(t, err)
	require.NoError(t, stop())

	recorded, err := os.ReadFile(cassetteName + ".yaml")
	require.NoError(t, err)
	assert.Contains(t, string(recorded), "rest/api/content/100")
	assert.NotContains(t, string(recorded), "Basic ")

	// second pass: the server is gone, the cassette answers
	srv.Close()

	replay, err := NewAPI(wikiURL, "me@acme.com", "t0k3n")
	require.NoError(t, err)
	stop, err = replay.UseRecorder(cassetteName, recorder.ModeReplayOnly)
	require.NoError(t, err)
	defer stop()

	again, err := replay.FetchPage(ctx, PageQuery{ID: "100"})
	require.NoError(t, err)
	assert.Equal(t, page.Title, again.Title)
	assert.Equal(t, page.StorageHTML(), again.StorageHTML())
}
