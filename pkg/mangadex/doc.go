// Package mangadex is a client for the legacy MangaDex v2 API.
//
// Only the two endpoints needed to count pages are covered:
//
//	GET /api/v2/manga/{id}?include=chapters
//	GET /api/v2/chapter/{id}
//
// Requests are rate limited and sent through a retrying transport mounted on
// the configured host. Failures are returned as *errors.Error values typed as
// network, not_found, rate_limit, server_error or parsing.
//
// Usage:
//
//	client, err := mangadex.NewClient(cfg.MangaDex, cfg.Retry,
//		ratelimit.NewTokenBucket(5, 5), logger.GetLogger())
//	if err != nil {
//		return err
//	}
//
//	manga, err := client.GetManga(ctx, 607)
//	chapter, err := client.GetChapter(ctx, manga.Chapters[0].ID)
package mangadex
