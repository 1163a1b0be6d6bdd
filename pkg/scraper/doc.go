// Package scraper orchestrates the page count pipeline for each manga id.
//
// For every id, strictly in order:
//   - fetch the manga and its chapter uploads
//   - load the cached page counts, or resolve one upload per chapter number,
//     fetch each chapter's pages and write the cache once
//   - filter the counts into the plotted series
//   - render the chart
//
// The first error stops the run. Collaborators are interfaces so tests can
// swap the MangaDex client, cache and renderer.
package scraper
