package confluence

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-get
type User struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// See https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get.
type Space struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Page is the v1 content shape, trimmed to what an export needs:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
type Page struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"` // current, archived, draft, trashed
	Title  string `json:"title"`

	Space   *SpaceRef `json:"space,omitempty"`
	Version *Version  `json:"version,omitempty"`

	Body Body `json:"body"`

	Links struct {
		Base   string `json:"base"`
		WebUI  string `json:"webui"`
		TinyUI string `json:"tinyui"`
	} `json:"_links"`
}

// SpaceKey is the key of the containing space, if the API expanded it.
func (p Page) SpaceKey() string {
	if p.Space == nil {
		return ""
	}
	return p.Space.Key
}

// StorageHTML is the page body in Confluence storage format.
func (p Page) StorageHTML() string {
	if p.Body.Storage == nil {
		return ""
	}
	return p.Body.Storage.Value
}

type SpaceRef struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Version defines the content version number
type Version struct {
	When      string `json:"when"`
	Message   string `json:"message,omitempty"`
	Number    int    `json:"number"`
	MinorEdit bool   `json:"minorEdit"`
}

// Body holds the storage information
type Body struct {
	Storage *Storage `json:"storage,omitempty"`
	View    *Storage `json:"view,omitempty"`
}

// Storage defines the storage information
type Storage struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// Attachment is a file hanging off a page.
type Attachment struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Title  string `json:"title"`

	Metadata struct {
		MediaType string `json:"mediaType"`
		Comment   string `json:"comment"`
	} `json:"metadata"`

	Extensions struct {
		MediaType string `json:"mediaType"`
		FileSize  int64  `json:"fileSize"`
	} `json:"extensions"`

	Links struct {
		Download string `json:"download"`
		WebUI    string `json:"webui"`
	} `json:"_links"`
}
