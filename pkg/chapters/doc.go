// Package chapters holds the chapter data model and the pure steps between
// fetching and charting: picking one upload per chapter number (Resolve) and
// dropping low-confidence points (Filter).
//
// Chapter numbers are exact decimals so that "1", "1.0" and "1.5" compare
// the way a reader expects.
package chapters
