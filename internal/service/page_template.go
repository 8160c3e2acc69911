package service

import (
	"context"
	"time"

	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
)

type templateFiles interface {
	ReadFile(name string) ([]byte, error)
}

// PageTemplateSource loads the SPA index template from storage and keeps it in memory for
// the template TTL.
type PageTemplateSource struct {
	files templateFiles
	name  string
	cache *timedCache[string]
}

// NewPageTemplateSource constructs a template source for name. A nil clock means time.Now.
func NewPageTemplateSource(files templateFiles, name string, ttl time.Duration, now Clock) *PageTemplateSource {
	if ttl <= 0 {
		ttl = DefaultTemplateTTL
	}
	if name == "" {
		name = "index.html"
	}
	return &PageTemplateSource{files: files, name: name, cache: newTimedCache[string](ttl, now)}
}

// Load returns the template, reading it from storage when the cached copy is missing or
// stale. Read failures are not cached.
func (s *PageTemplateSource) Load(ctx context.Context) (string, error) {
	if tmpl, ok := s.cache.get(s.name); ok {
		return tmpl, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := s.files.ReadFile(s.name)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrTemplateUnavailable.Code, appErrors.ErrTemplateUnavailable.Status, "failed to read page template")
	}
	tmpl := string(data)
	s.cache.set(s.name, tmpl)
	return tmpl, nil
}

// Sweep drops the cached template once stale.
func (s *PageTemplateSource) Sweep() int {
	return s.cache.sweep()
}

// Invalidate forces the next Load to re-read storage.
func (s *PageTemplateSource) Invalidate() {
	s.cache.delete(s.name)
}
