package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"

	"github.com/pkg/browser"
	gochart "github.com/wcharczuk/go-chart/v2"

	"mangapages/pkg/chapters"
	"mangapages/pkg/config"
	"mangapages/pkg/logger"
	"mangapages/pkg/storage"
)

// Opener displays a local file, normally in the user's web browser
type Opener func(path string) error

// Result lists the files written for one title
type Result struct {
	SVGPath     string
	PNGPath     string
	PreviewPath string
}

// Renderer draws page count charts and writes them through a storage manager
type Renderer struct {
	cfg     config.ChartConfig
	storage *storage.Manager
	open    Opener
	logger  logger.Logger
}

// NewRenderer creates a renderer that writes into store
func NewRenderer(cfg config.ChartConfig, store *storage.Manager, log logger.Logger) *Renderer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Renderer{
		cfg:     cfg,
		storage: store,
		open:    browser.OpenFile,
		logger:  log,
	}
}

// SetOpener replaces the function used to show the browser preview
func (r *Renderer) SetOpener(open Opener) {
	r.open = open
}

// Render writes <title>.svg and <title>.png and, when enabled, opens an HTML
// preview of the SVG in the browser. It returns ErrEmptySeries when series
// has no points.
func (r *Renderer) Render(title string, series chapters.Series) (*Result, error) {
	ch, err := build(r.cfg, title, series)
	if err != nil {
		return nil, err
	}

	svg, err := renderBytes(ch, gochart.SVG)
	if err != nil {
		return nil, err
	}
	png, err := renderBytes(ch, gochart.PNG)
	if err != nil {
		return nil, err
	}

	name := storage.SanitizeName(title)
	result := &Result{}

	if result.SVGPath, err = r.storage.Save(name+".svg", bytes.NewReader(svg)); err != nil {
		return nil, fmt.Errorf("failed to save SVG chart: %w", err)
	}
	if result.PNGPath, err = r.storage.Save(name+".png", bytes.NewReader(png)); err != nil {
		return nil, fmt.Errorf("failed to save PNG chart: %w", err)
	}

	r.logger.InfoWithFields("Chart rendered", map[string]interface{}{
		"title":  title,
		"points": len(series),
		"svg":    result.SVGPath,
		"png":    result.PNGPath,
	})

	if r.cfg.OpenBrowser && r.open != nil {
		path, err := writePreview(title, svg)
		if err != nil {
			return nil, err
		}
		result.PreviewPath = path

		if err := r.open(path); err != nil {
			r.logger.WarnWithFields("failed to open browser preview", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	return result, nil
}

// IsEmptySeries reports whether err means there was nothing to plot
func IsEmptySeries(err error) bool {
	return errors.Is(err, ErrEmptySeries)
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<figure>
{{.SVG}}
</figure>
</body>
</html>
`))

// writePreview writes an HTML page embedding svg to a temporary file
func writePreview(title string, svg []byte) (string, error) {
	file, err := os.CreateTemp("", "mangapages-*.html")
	if err != nil {
		return "", fmt.Errorf("failed to create preview file: %w", err)
	}

	data := struct {
		Title string
		SVG   template.HTML
	}{
		Title: title,
		SVG:   template.HTML(svg),
	}

	if err := previewTemplate.Execute(file, data); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write preview: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to close preview file: %w", err)
	}

	return file.Name(), nil
}
