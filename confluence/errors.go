package confluence

import "errors"

var (
	// ErrNotFound means the page (or the title+space lookup) matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous means a title+space lookup matched more than one page.
	ErrAmbiguous = errors.New("ambiguous lookup")

	// ErrAuthenticationFailed means Confluence rejected the credentials (HTTP 401/403).
	ErrAuthenticationFailed = errors.New("authentication failed")
)
