package mangadex

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the MangaDex site hosting the legacy v2 API
	DefaultBaseURL = "https://mangadex.org"

	// MangaEndpoint is the endpoint pattern for a manga and its chapter list
	MangaEndpoint = "/api/v2/manga/%d"

	// ChapterEndpoint is the endpoint pattern for a single chapter
	ChapterEndpoint = "/api/v2/chapter/%s"
)

// GetMangaURL constructs the URL for fetching a manga with its chapters
func GetMangaURL(baseURL string, mangaID int) string {
	params := url.Values{}
	params.Set("include", "chapters")

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), fmt.Sprintf(MangaEndpoint, mangaID), params.Encode())
}

// GetChapterURL constructs the URL for fetching a chapter's page list
func GetChapterURL(baseURL string, chapterID string) string {
	return fmt.Sprintf("%s%s", strings.TrimRight(baseURL, "/"), fmt.Sprintf(ChapterEndpoint, url.PathEscape(chapterID)))
}

// hostOf returns the host component of baseURL
func hostOf(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	return u.Host, nil
}
