package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cragbase-api/models"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	numericSlug     = regexp.MustCompile(`^[0-9]+$`)

	// Folds "Café" to "Cafe" before slugifying
	diacriticsFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// ErrInvalidAreaPath signals a malformed area address. Handlers respond with
// 404, the same as for a missing area.
var ErrInvalidAreaPath = errors.New("invalid area path")

// GenerateSlug derives a URL-safe slug from a display name: lowercase,
// diacritics stripped, runs of non-alphanumerics collapsed to single hyphens,
// leading/trailing hyphens trimmed.
//
// When the result is empty or purely numeric, a random suffix is appended so
// the slug can never be mistaken for a bare numeric route id. The trim step
// already strips a leading sign, so "-42" is caught by the numeric check too.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	if folded, _, err := transform.String(diacriticsFolder, slug); err == nil {
		slug = folded
	}
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" || numericSlug.MatchString(slug) {
		suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
		if slug == "" {
			return suffix
		}
		return slug + "-" + suffix
	}

	return slug
}

// AreaSlugInfo is the decoded form of a nested area path like
// "greece-12/roviés-23/kalogria-40".
type AreaSlugInfo struct {
	AreaSlug   string   `json:"area_slug"`
	AreaID     int      `json:"area_id"`
	CanAddArea bool     `json:"can_add_area"`
	Path       []string `json:"path"`
}

// ConvertAreaSlug decodes a "/"-delimited path of "{slug}-{id}" segments.
// Only the last segment is parsed; the full path is returned so callers can
// reassemble sibling URLs after a mutation. CanAddArea reports whether a
// child area may still be nested below the addressed one.
func ConvertAreaSlug(slugs string) (*AreaSlugInfo, error) {
	slugs = strings.Trim(slugs, "/")
	if slugs == "" {
		return nil, ErrInvalidAreaPath
	}

	path := strings.Split(slugs, "/")
	last := path[len(path)-1]

	slug := ""
	idPart := last
	if i := strings.LastIndex(last, "-"); i >= 0 {
		slug = last[:i]
		idPart = last[i+1:]
	}

	id, err := strconv.Atoi(idPart)
	if err != nil {
		return nil, ErrInvalidAreaPath
	}

	return &AreaSlugInfo{
		AreaSlug:   slug,
		AreaID:     id,
		CanAddArea: len(path) < models.MaxAreaNestingDepth,
		Path:       path,
	}, nil
}
