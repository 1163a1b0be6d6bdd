// Package chart renders the page count per chapter XY chart for a title.
//
// Charts are drawn with go-chart and written as both SVG and PNG. When
// browser previews are enabled an HTML page embedding the SVG is written to
// the temp directory and opened with the system browser.
package chart
