package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/toothbrush/confluence2md/confluence"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

const vcrCassette = "fixtures/confluence2md"

// baseURL works out which wiki to talk to: --confluence-url wins over --confluence-instance.
func baseURL() (string, error) {
	if ConfluenceURL != "" {
		return ConfluenceURL, nil
	}
	if ConfluenceInstance != "" {
		return confluence.InstanceURL(ConfluenceInstance), nil
	}
	return "", errors.New("no wiki configured; use --confluence-url, --confluence-instance or CONFLUENCE_URL")
}

// authToken is the first line printed by --auth-token-cmd, falling back to CONFLUENCE_API_TOKEN.
func authToken() (string, error) {
	if len(AuthTokenCmd) > 0 {
		debugLog("Running auth-token-cmd %v\n", AuthTokenCmd)
		tokenCmdOutput, err := exec.Command(AuthTokenCmd[0], AuthTokenCmd[1:]...).Output()
		if err != nil {
			return "", fmt.Errorf("couldn't execute auth-token-cmd '%v': %w", AuthTokenCmd, err)
		}
		token := strings.TrimSpace(strings.Split(string(tokenCmdOutput), "\n")[0])
		if token == "" {
			return "", fmt.Errorf("auth-token-cmd '%v' printed nothing", AuthTokenCmd)
		}
		return token, nil
	}

	if token := os.Getenv("CONFLUENCE_API_TOKEN"); token != "" {
		return token, nil
	}
	return "", errors.New("no API token; use --auth-token-cmd or CONFLUENCE_API_TOKEN")
}

// newAPI assembles the Confluence session from flags, environment and config.
func newAPI() (*confluence.API, error) {
	base, err := baseURL()
	if err != nil {
		return nil, err
	}
	token, err := authToken()
	if err != nil {
		return nil, err
	}

	api, err := confluence.NewAPI(base, AuthUsername, token)
	if err != nil {
		return nil, fmt.Errorf("couldn't instantiate Confluence API: %w", err)
	}
	if Timeout > 0 {
		api.Client.Timeout = Timeout
	}
	debugLog("Talking to %s as %q\n", api.BaseURI, api.Username())

	return api, nil
}

// withVCR records API traffic into (and replays it from) the fixtures cassette.
func withVCR(api *confluence.API) (func() error, error) {
	stop, err := api.UseRecorder(vcrCassette, recorder.ModeReplayWithNewEpisodes)
	if err != nil {
		return nil, fmt.Errorf("couldn't set up go-vcr recording: %w", err)
	}
	debugLog("Recording to %s.yaml\n", vcrCassette)
	return stop, nil
}
