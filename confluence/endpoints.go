package confluence

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// getContentByIDEndpoint returns the (v1) API endpoint to download one page:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
func (a *API) getContentByIDEndpoint(opts GetContentByIDQuery) (*url.URL, error) {
	id := strings.TrimSpace(opts.ID)
	if id == "" {
		return nil, fmt.Errorf("confluence: please provide ID to get page by ID")
	}

	return a.endpointWithQuery(opts, "rest/api/content", id)
}

// searchContentEndpoint returns the (v1) API endpoint to look pages up by title and space:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
func (a *API) searchContentEndpoint(opts SearchContentQuery) (*url.URL, error) {
	if opts.Title == "" || opts.SpaceKey == "" {
		return nil, fmt.Errorf("confluence: please provide both title and space key to search")
	}

	return a.endpointWithQuery(opts, "rest/api/content")
}

// childAttachmentsEndpoint returns the (v1) API endpoint to list a page's attachments:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content---attachments/#api-wiki-rest-api-content-id-child-attachment-get
func (a *API) childAttachmentsEndpoint(opts ChildAttachmentsQuery) (*url.URL, error) {
	id := strings.TrimSpace(opts.PageID)
	if id == "" {
		return nil, fmt.Errorf("confluence: please provide page ID to list attachments")
	}

	return a.endpointWithQuery(opts, "rest/api/content", id, "child", "attachment")
}

// getSpaceEndpoint returns the (v2) API endpoint to list spaces
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get
func (a *API) getSpaceEndpoint(opts SpacesQuery) (*url.URL, error) {
	return a.endpointWithQuery(opts, "api/v2/spaces")
}

// getCurrentUserEndpoint returns the (v1) API endpoint to query current user
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
//
// This API is supported.
func (a *API) getCurrentUserEndpoint() (*url.URL, error) {
	return a.resolveEndpoint("rest/api/user/current")
}

func (a *API) endpointWithQuery(opts any, elem ...string) (*url.URL, error) {
	ep, err := a.resolveEndpoint(elem...)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// Endpoints live under the wiki root, so they're joined onto the base path rather than
// resolved against the host.
func (a *API) resolveEndpoint(elem ...string) (*url.URL, error) {
	if a.BaseURI == nil {
		return nil, fmt.Errorf("confluence: API has no base URI")
	}

	for _, e := range elem {
		if strings.Contains(e, "..") {
			return nil, fmt.Errorf("confluence: refusing suspicious path element %q", e)
		}
	}

	return a.BaseURI.JoinPath(elem...), nil
}
