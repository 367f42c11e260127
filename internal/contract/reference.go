package contract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/reposcore/schema"
)

var (
	// urlReference matches https://github.com/owner/name and git@github.com:owner/name forms,
	// with an optional .git suffix, trailing slash, deeper path, query or fragment.
	urlReference = regexp.MustCompile(`^(?:(?:https?://)?(?:www\.)?github\.com/|git@github\.com:)([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:[/?#].*)?$`)

	// shortReference matches the owner/name form.
	shortReference = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?$`)
)

// ParseRepositoryReference parses a full URL or an owner/name reference.
// The returned error matches ErrInvalidReference.
func ParseRepositoryReference(ref string) (schema.RepositoryCoordinates, error) {
	trimmed := strings.TrimSpace(ref)
	for _, pattern := range []*regexp.Regexp{urlReference, shortReference} {
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		owner, name := m[1], m[2]
		if isDotName(owner) || isDotName(name) {
			break
		}
		return schema.RepositoryCoordinates{Owner: owner, Name: name}, nil
	}
	return schema.RepositoryCoordinates{}, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
}

// isDotName reports whether a path segment is empty or only dots.
func isDotName(s string) bool {
	return strings.Trim(s, ".") == ""
}
