package confluence

// SpacesQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get
type SpacesQuery struct {
	// Filter the results to spaces based on...
	Keys   []string `url:"keys,omitempty,comma"` // their keys.
	Type   string   `url:"type,omitempty"`       // their types. Valid values: "global" or "personal"
	Status string   `url:"status,omitempty"`     // their status: current, archived.

	Sort string `url:"sort,omitempty"` // Sort order: id, -id, key, -key, name, -name

	// 'Cursor' is used for pagination; this opaque cursor will be returned in the 'next' URL in the
	// 'Link' response header.  Use the relative URL in the 'Link' header to retrieve the next set
	// of results.
	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"` // page limit; default 25, range 1-250
}

// GetContentByIDQuery defines the query parameters for the v1 call:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
type GetContentByIDQuery struct {
	ID string `url:"-"` // ID of the page; required

	// Comma separated list of properties to expand, e.g. body.storage,version
	Expand []string `url:"expand,omitempty,comma"`
	Status string   `url:"status,omitempty"`
}

// SearchContentQuery defines the query parameters for the v1 call:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
type SearchContentQuery struct {
	Title    string   `url:"title,omitempty"`
	SpaceKey string   `url:"spaceKey,omitempty"`
	Type     string   `url:"type,omitempty"` // page or blogpost
	Expand   []string `url:"expand,omitempty,comma"`
	Start    int      `url:"start,omitempty"`
	Limit    int      `url:"limit,omitempty"`
}

// ChildAttachmentsQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content---attachments/#api-wiki-rest-api-content-id-child-attachment-get
type ChildAttachmentsQuery struct {
	PageID string `url:"-"` // ID of the containing page; required

	Filename  string   `url:"filename,omitempty"`
	MediaType string   `url:"mediaType,omitempty"`
	Expand    []string `url:"expand,omitempty,comma"`
	Start     int      `url:"start,omitempty"`
	Limit     int      `url:"limit,omitempty"` // default 50
}
