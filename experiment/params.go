package experiment

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kbukum/gonogo/store"
)

// Params is the bundle handed to the page as PARAMS. It is built once per
// process and shared by every session.
type Params struct {
	Condition int      `json:"condition"`
	Images    []string `json:"images"`
	Connected bool     `json:"connected"`
}

// BuildParams lists the image directory and snapshots the handle's
// connectivity. Later state changes of h do not affect the result. A
// directory that cannot be listed is an error.
func BuildParams(fsys afero.Fs, cfg Config, h *store.Handle) (Params, error) {
	cfg.ApplyDefaults()

	entries, err := afero.ReadDir(fsys, cfg.ImageDir)
	if err != nil {
		return Params{}, fmt.Errorf("list images in %s: %w", cfg.ImageDir, err)
	}

	prefix := imageURLPrefix(cfg.PublicDir, cfg.ImageDir)
	images := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		images = append(images, path.Join(prefix, e.Name()))
	}

	return Params{
		Condition: cfg.Condition,
		Images:    images,
		Connected: h != nil && h.Connected(),
	}, nil
}

// JS returns the bundle as a JSON literal for a <script> block.
func (p Params) JS() (template.JS, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// imageURLPrefix is the URL path of imageDir as served from publicDir:
// public/img -> img. Directories outside publicDir use their base name.
func imageURLPrefix(publicDir, imageDir string) string {
	rel, err := filepath.Rel(publicDir, imageDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Base(imageDir)
	}
	return filepath.ToSlash(rel)
}
