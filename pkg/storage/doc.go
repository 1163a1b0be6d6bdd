// Package storage writes rendered chart files into the output directory.
//
// Writes are atomic: data goes to a temporary file in the same directory and
// is renamed into place, so an interrupted render never leaves a truncated
// SVG or PNG behind. Existing files are replaced.
//
// Usage:
//
//	manager, err := storage.NewManager("charts")
//	if err != nil {
//	    return err
//	}
//
//	name := storage.SanitizeName(title) + ".svg"
//	path, err := manager.Save(name, &buf)
package storage
