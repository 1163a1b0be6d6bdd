package scraper

import (
	"context"

	"mangapages/pkg/chapters"
	"mangapages/pkg/chart"
	"mangapages/pkg/mangadex"
	"mangapages/pkg/ui"
)

// MangaClient defines the MangaDex API operations the scraper needs
type MangaClient interface {
	GetManga(ctx context.Context, mangaID int) (*mangadex.Manga, error)
	GetChapter(ctx context.Context, chapterID string) (*mangadex.Chapter, error)
}

// PageCache stores fetched page counts per manga id
type PageCache interface {
	Path(mangaID int) string
	Load(mangaID int) (chapters.PageCounts, bool, error)
	Save(mangaID int, counts chapters.PageCounts) error
}

// ChartRenderer draws the chart for a title
type ChartRenderer interface {
	Render(title string, series chapters.Series) (*chart.Result, error)
}

// ProgressFactory creates the progress reporter for a title
type ProgressFactory func(label string) ui.Progress
