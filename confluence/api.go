package confluence

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made through an API created by NewAPI.
const DefaultTimeout = 30 * time.Second

// placeholders people tend to paste straight from the README.
var placeholders = []string{"your-domain.atlassian.net", "you@example.com", "api-token"}

// InstanceURL turns an Atlassian ORG name into its wiki base URL.
func InstanceURL(instance string) string {
	return fmt.Sprintf("https://%s.atlassian.net/wiki", instance)
}

func NewAPI(baseURL string, username string, token string) (*API, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("confluence: configure your Confluence URL with --confluence-url or --confluence-instance")
	}
	if token == "" {
		return nil, fmt.Errorf("confluence: auth token is empty, please check auth-token-cmd or CONFLUENCE_API_TOKEN")
	}
	for _, p := range placeholders {
		if strings.Contains(baseURL, p) || username == p || token == p {
			return nil, fmt.Errorf("confluence: replace placeholder value %q with your real site, email and token", p)
		}
	}

	u, err := url.ParseRequestURI(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("confluence: base URL must start with http(s): %s", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	a := &API{
		BaseURI:  u,
		token:    token,
		username: username,
	}
	a.Client = &http.Client{Timeout: DefaultTimeout}

	return a, nil
}

// API is the session context for one export: where the wiki lives and who we are. Treat it
// as read-only once created.
type API struct {
	// Wiki root, e.g. https://INSTANCE.atlassian.net/wiki
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Auth info
	username, token string
}

// Username is the account the session authenticates as.
func (api *API) Username() string {
	return api.username
}
