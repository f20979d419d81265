package confluence

import (
	"fmt"
	"net/http"

	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

// UseRecorder swaps the API's HTTP client for a go-vcr one backed by the named cassette.
// Authorization headers never make it into the cassette.  Call the returned stop func to
// flush the recording.
func (api *API) UseRecorder(cassetteName string, mode recorder.Mode) (func() error, error) {
	realTransport := http.DefaultTransport
	if api.Client != nil && api.Client.Transport != nil {
		realTransport = api.Client.Transport
	}

	opts := &recorder.Options{
		CassetteName:       cassetteName,
		Mode:               mode,
		SkipRequestLatency: true,
		RealTransport:      realTransport,
	}
	r, err := recorder.NewWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't set up go-vcr recording: %w", err)
	}

	// Add a hook which removes Authorization headers from all requests
	hook := func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	}
	r.AddHook(hook, recorder.AfterCaptureHook)
	r.SetReplayableInteractions(true)

	client := r.GetDefaultClient()
	if api.Client != nil {
		client.Timeout = api.Client.Timeout
	}
	api.Client = client

	return r.Stop, nil
}
