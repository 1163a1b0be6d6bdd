package mangadex

import (
	"strconv"

	"mangapages/pkg/chapters"
)

// MangaResponse is the envelope returned by the manga endpoint
type MangaResponse struct {
	Code   int       `json:"code"`
	Status string    `json:"status"`
	Data   MangaData `json:"data"`
}

// MangaData wraps the manga and its chapter list
type MangaData struct {
	Manga    MangaInfo        `json:"manga"`
	Chapters []ChapterSummary `json:"chapters"`
	Groups   []Group          `json:"groups"`
}

// MangaInfo holds the manga metadata used here
type MangaInfo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ChapterSummary is one chapter upload in a manga's chapter list
type ChapterSummary struct {
	ID        int             `json:"id"`
	Hash      string          `json:"hash"`
	MangaID   int             `json:"mangaId"`
	Volume    string          `json:"volume"`
	Chapter   chapters.Number `json:"chapter"`
	Title     string          `json:"title"`
	Language  string          `json:"language"`
	Groups    []int           `json:"groups"`
	Uploader  int             `json:"uploader"`
	Timestamp int64           `json:"timestamp"`
	Views     int             `json:"views"`
}

// Group is a scanlation group referenced by chapter uploads
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ChapterResponse is the envelope returned by the chapter endpoint
type ChapterResponse struct {
	Code   int         `json:"code"`
	Status string      `json:"status"`
	Data   ChapterData `json:"data"`
}

// ChapterData holds a chapter's page list
type ChapterData struct {
	ID      int             `json:"id"`
	Hash    string          `json:"hash"`
	MangaID int             `json:"mangaId"`
	Chapter chapters.Number `json:"chapter"`
	Pages   []string        `json:"pages"`
	Server  string          `json:"server"`
}

// Manga is a title with its chapter uploads
type Manga struct {
	ID       int
	Title    string
	Chapters []chapters.Record
}

// Chapter is a single upload with its page file names
type Chapter struct {
	ID    string
	Hash  string
	Pages []string
}

// PageCount returns the number of story pages. The last page is the
// group credits page and is not counted.
func (c *Chapter) PageCount() int {
	if len(c.Pages) == 0 {
		return 0
	}
	return len(c.Pages) - 1
}

// Record converts a chapter summary into a resolver record
func (s ChapterSummary) Record() chapters.Record {
	return chapters.Record{
		ID:     strconv.Itoa(s.ID),
		Number: s.Chapter,
		Groups: s.Groups,
		Views:  s.Views,
	}
}

func (r *MangaResponse) toManga() *Manga {
	records := make([]chapters.Record, len(r.Data.Chapters))
	for i, s := range r.Data.Chapters {
		records[i] = s.Record()
	}
	return &Manga{
		ID:       r.Data.Manga.ID,
		Title:    r.Data.Manga.Title,
		Chapters: records,
	}
}
