// Package cache persists fetched page counts so a title is only crawled once.
//
// Each manga id maps to <dir>/<id>.json, a JSON object from decimal chapter
// number to page count:
//
//	{"1":20,"1.5":12,"2":19}
//
// Files are write-once. Save stages the data in a temporary file and
// hard-links it into place, so a partially written file is never visible and
// an existing file is never replaced. Delete a file by hand to force a
// refetch.
package cache
