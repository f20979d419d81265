package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// GetPageByID fetches one page, including its storage-format body.
func (api *API) GetPageByID(ctx context.Context, opts GetContentByIDQuery) (*Page, error) {
	ep, err := api.getContentByIDEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get single page endpoint: %w", err)
	}

	body, err := api.requestJSON(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get page %s: %w", opts.ID, err)
	}

	var page Page

	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &page, nil
}

func (api *API) SearchContent(ctx context.Context, opts SearchContentQuery) (*ContentList, error) {
	ep, err := api.searchContentEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get search endpoint: %w", err)
	}

	body, err := api.requestJSON(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var list ContentList

	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &list, nil
}

func (api *API) GetChildAttachments(ctx context.Context, opts ChildAttachmentsQuery) (*AttachmentList, error) {
	ep, err := api.childAttachmentsEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get attachments endpoint: %w", err)
	}

	body, err := api.requestJSON(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var list AttachmentList

	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &list, nil
}

func (api *API) getSpaces(ctx context.Context, opts SpacesQuery) (*AllSpaces, error) {
	ep, err := api.getSpaceEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get spaces endpoint: %w", err)
	}

	body, err := api.requestJSON(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var allSpaces AllSpaces

	if err := json.Unmarshal(body, &allSpaces); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &allSpaces, nil
}

// CurrentUser return current user information
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user endpoint: %w", err)
	}

	body, err := api.requestJSON(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &user, nil
}

// DownloadAttachment fetches the raw bytes behind an attachment or thumbnail URL. Credentials
// are only ever sent to the wiki's own host, over the wiki's own scheme.
func (api *API) DownloadAttachment(ctx context.Context, target *url.URL) ([]byte, error) {
	if target == nil || !target.IsAbs() {
		return nil, fmt.Errorf("confluence: attachment URL must be absolute")
	}
	if !strings.EqualFold(target.Host, api.BaseURI.Host) {
		return nil, fmt.Errorf("confluence: refusing to send credentials to foreign host %s", target.Host)
	}
	if !strings.EqualFold(target.Scheme, api.BaseURI.Scheme) {
		return nil, fmt.Errorf("confluence: refusing to send credentials over %s to a %s wiki", target.Scheme, api.BaseURI.Scheme)
	}

	body, header, err := api.request(ctx, target, "*/*")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't download %s: %w", target.Redacted(), err)
	}

	// An HTML body here is almost always a login or error page rather than the file.
	if mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type")); err == nil && mediaType == "text/html" {
		return nil, fmt.Errorf("confluence: got an HTML page instead of a file for %s", target.Redacted())
	}

	return body, nil
}

func (api *API) requestJSON(ctx context.Context, url *url.URL) ([]byte, error) {
	body, _, err := api.request(ctx, url, "application/json, */*")
	return body, err
}

// Request implements the basic Request function
func (api *API) request(ctx context.Context, url *url.URL, accept string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("confluence: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", accept)

	// if user & token are not set, do not add authorization header
	if api.username != "" && api.token != "" {
		req.SetBasicAuth(api.username, api.token)
	} else if api.token != "" {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}

	client := api.Client
	if client == nil {
		client = http.DefaultClient
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		response.Body.Close()
		return nil, nil, fmt.Errorf("confluence: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, nil, fmt.Errorf("confluence: couldn't close response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNoContent, http.StatusResetContent:
		return body, response.Header, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil, fmt.Errorf("confluence: %w: %s (check the username, API token and that the token belongs to this site)", ErrAuthenticationFailed, response.Status)
	case http.StatusNotFound:
		return nil, nil, fmt.Errorf("confluence: %w: %s", ErrNotFound, url.Redacted())
	case http.StatusServiceUnavailable:
		return nil, nil, fmt.Errorf("confluence: service is not available: %s", response.Status)
	case http.StatusInternalServerError:
		return nil, nil, fmt.Errorf("confluence: internal server error: %s", response.Status)
	case http.StatusConflict:
		return nil, nil, fmt.Errorf("confluence: conflict: %s", response.Status)
	}

	return nil, nil, fmt.Errorf("confluence: unknown HTTP response status: %s: %s", response.Status, url.Redacted())
}
