package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// pageExpansions are the fields an export needs from a page.
var pageExpansions = []string{"body.storage", "version", "space"}

// PageQuery selects one page: either by ID, or by Title within SpaceKey. ID wins if both are
// given.
type PageQuery struct {
	ID       string
	Title    string
	SpaceKey string
}

func (q PageQuery) String() string {
	if q.ID != "" {
		return fmt.Sprintf("page %s", q.ID)
	}
	return fmt.Sprintf("page %q in space %s", q.Title, q.SpaceKey)
}

// FetchPage retrieves a single page and its storage-format body. A title+space query is
// resolved to exactly one page or fails with ErrNotFound / ErrAmbiguous.
func (api *API) FetchPage(ctx context.Context, q PageQuery) (*Page, error) {
	if id := strings.TrimSpace(q.ID); id != "" {
		page, err := api.GetPageByID(ctx, GetContentByIDQuery{
			ID:     id,
			Expand: pageExpansions,
		})
		if err != nil {
			return nil, err
		}
		return page, nil
	}

	if q.Title == "" || q.SpaceKey == "" {
		return nil, fmt.Errorf("confluence: need a page ID, or both title and space key")
	}

	// Two is enough to tell "unique" from "ambiguous".
	list, err := api.SearchContent(ctx, SearchContentQuery{
		Title:    q.Title,
		SpaceKey: q.SpaceKey,
		Type:     "page",
		Expand:   pageExpansions,
		Limit:    2,
	})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't look up %s: %w", q, err)
	}

	switch {
	case len(list.Results) == 0:
		return nil, fmt.Errorf("confluence: %s: %w", q, ErrNotFound)
	case len(list.Results) > 1 || list.Links.Next != "":
		return nil, fmt.Errorf("confluence: %s matched more than one page: %w", q, ErrAmbiguous)
	}

	page := list.Results[0]
	if page.Body.Storage == nil {
		// Some instances ignore expand on search; fetch the page properly.
		return api.FetchPage(ctx, PageQuery{ID: page.ID})
	}

	return &page, nil
}

// ListAttachments walks every attachment of a page.
func (api *API) ListAttachments(ctx context.Context, pageID string) ([]Attachment, error) {
	query := ChildAttachmentsQuery{
		PageID: pageID,
		Limit:  200,
	}

	attachments := []Attachment{}
	for {
		list, err := api.GetChildAttachments(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list attachments of %s: %w", pageID, err)
		}

		attachments = append(attachments, list.Results...)

		if list.Links.Next == "" || len(list.Results) == 0 {
			break
		}
		query.Start += len(list.Results)
	}

	return attachments, nil
}

func (api *API) ListAllSpaces(ctx context.Context, includePersonal bool) (map[string]Space, error) {
	spaces := map[string]Space{}

	query := SpacesQuery{
		Limit: 100,
	}

	if !includePersonal {
		// Logic here is a bit confusing.  The `type` parameter may be "global", "personal", or
		// nothing at all for both.  "global" will return spaces like DRE, CORE, etc., while
		// "personal" returns each user's space.  Leaving it empty gives us everything, so we only
		// set this if we _do not_ intend to include personal spaces in our query.
		query.Type = "global"
	}

	for {
		allspaces, err := api.getSpaces(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list spaces: %w", err)
		}

		for _, space := range allspaces.Results {
			spaces[space.Key] = space
		}

		if allspaces.Links.Next == "" {
			break
		}

		q, err := url.Parse(allspaces.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
		query.Cursor = q.Query().Get("cursor")
		if query.Cursor == "" {
			return nil, fmt.Errorf("confluence: expected parameter 'cursor' was empty")
		}
	}

	return spaces, nil
}
