package scraper

import (
	"context"
	"fmt"

	"mangapages/pkg/chapters"
	"mangapages/pkg/chart"
	"mangapages/pkg/config"
	"mangapages/pkg/logger"
	"mangapages/pkg/ui"
)

// Result is the outcome of processing one manga id
type Result struct {
	MangaID   int
	Title     string
	Counts    chapters.PageCounts
	Series    chapters.Series
	FromCache bool
}

// Scraper runs the fetch, cache, filter and render pipeline per manga id
type Scraper struct {
	client      MangaClient
	cache       PageCache
	renderer    ChartRenderer
	newProgress ProgressFactory
	config      *config.Config
	logger      logger.Logger
}

// New creates a new Scraper instance
func New(cfg *config.Config, client MangaClient, cache PageCache, renderer ChartRenderer, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scraper{
		client:   client,
		cache:    cache,
		renderer: renderer,
		newProgress: func(label string) ui.Progress {
			return ui.NewProgress(ui.Output, label)
		},
		config: cfg,
		logger: log,
	}
}

// SetProgressFactory replaces how per-title progress reporters are created
func (s *Scraper) SetProgressFactory(factory ProgressFactory) {
	s.newProgress = factory
}

// FetchPageCounts fetches every resolved chapter in ascending order and
// records its page count. The first failure aborts and nothing is returned.
func (s *Scraper) FetchPageCounts(ctx context.Context, canonical chapters.CanonicalMap, progress ui.Progress) (chapters.PageCounts, error) {
	progress.Start(len(canonical))
	defer progress.Finish()

	counts := make(chapters.PageCounts, 0, len(canonical))
	for i, entry := range canonical {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chapter, err := s.client.GetChapter(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chapter %s (number %s): %w", entry.ID, entry.Number, err)
		}

		counts = append(counts, chapters.PageCount{
			Number: entry.Number,
			Pages:  chapter.PageCount(),
		})
		progress.Increment()

		s.logger.DebugWithFields("Chapter page count", map[string]interface{}{
			"chapter_id": entry.ID,
			"chapter":    entry.Number,
			"pages":      chapter.PageCount(),
			"fetched":    i + 1,
			"total":      len(canonical),
		})
	}

	return counts, nil
}

// Process loads or fetches the page counts for one manga and filters them
// into the series to plot
func (s *Scraper) Process(ctx context.Context, mangaID int) (*Result, error) {
	manga, err := s.client.GetManga(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	ui.PrintStarting(manga.Title)
	log := s.logger.WithFields(map[string]interface{}{
		"manga_id": mangaID,
		"title":    manga.Title,
	})

	counts, cached, err := s.cache.Load(mangaID)
	if err != nil {
		return nil, err
	}

	if !cached {
		canonical := chapters.Resolve(manga.Chapters, s.config.MangaDex.ExcludedGroup)
		log.InfoWithFields("Resolved chapters", map[string]interface{}{
			"uploads":  len(manga.Chapters),
			"chapters": len(canonical),
		})

		counts, err = s.FetchPageCounts(ctx, canonical, s.newProgress(manga.Title))
		if err != nil {
			return nil, err
		}
		logger.LogFetchProgress(log, mangaID, len(counts), len(canonical))

		if err := s.cache.Save(mangaID, counts); err != nil {
			return nil, fmt.Errorf("failed to save cache: %w", err)
		}
		log.InfoWithFields("Cache written", map[string]interface{}{
			"path": s.cache.Path(mangaID),
		})
	}

	series := chapters.Filter(counts)
	log.DebugWithFields("Filtered series", map[string]interface{}{
		"chapters": len(counts),
		"points":   len(series),
		"cached":   cached,
	})

	return &Result{
		MangaID:   mangaID,
		Title:     manga.Title,
		Counts:    counts,
		Series:    series,
		FromCache: cached,
	}, nil
}

// Run processes ids in order, rendering a chart after each one. It stops at
// the first error; a title with nothing to plot is logged and skipped.
func (s *Scraper) Run(ctx context.Context, ids []int) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := s.Process(ctx, id)
		if err != nil {
			s.logger.WithError(err).WithField("manga_id", id).Error("Failed to process manga")
			return fmt.Errorf("failed to process manga %d: %w", id, err)
		}

		rendered, err := s.renderer.Render(result.Title, result.Series)
		if err != nil {
			if chart.IsEmptySeries(err) {
				s.logger.WarnWithFields("Nothing to plot, skipping chart", map[string]interface{}{
					"manga_id": id,
					"title":    result.Title,
				})
				ui.PrintWarning("Nothing to plot for " + result.Title)
				continue
			}
			return fmt.Errorf("failed to render chart for manga %d: %w", id, err)
		}
		if rendered.SVGPath != "" {
			ui.PrintInfo("Chart", rendered.SVGPath)
		}
	}

	return nil
}
