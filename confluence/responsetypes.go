package confluence

// AllSpaces response type
type AllSpaces struct {
	Results []Space `json:"results"`

	Links struct {
		// Contains the relative URL for the next set of results, using a cursor query
		// parameter. This property will not be present if there is no additional data available.
		Next string `json:"next"`
	} `json:"_links"`
}

// ContentList is the v1 paged envelope used by content search.
type ContentList struct {
	Results []Page `json:"results"`
	Start   int    `json:"start"`
	Limit   int    `json:"limit"`
	Size    int    `json:"size"`

	Links struct {
		Next string `json:"next"`
	} `json:"_links"`
}

// AttachmentList is the v1 paged envelope used by child/attachment.
type AttachmentList struct {
	Results []Attachment `json:"results"`
	Start   int          `json:"start"`
	Limit   int          `json:"limit"`
	Size    int          `json:"size"`

	Links struct {
		Next string `json:"next"`
	} `json:"_links"`
}
