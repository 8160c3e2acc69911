package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/tenant-config-api/pkg/hostname"
)

// ConfigPlaceholder is the marker in index.html replaced by the config script.
const ConfigPlaceholder = `<script name="[INCUBATOR]"></script>`

type domainConfigLookup interface {
	Lookup(ctx context.Context, domain string) (json.RawMessage, error)
}

type templateLoader interface {
	Load(ctx context.Context) (string, error)
}

// SitePageConfig tunes SitePageService.
type SitePageConfig struct {
	Normalize hostname.Normalizer
	Debug     bool
}

// SitePageService renders the SPA shell per host with the host's config injected and
// keeps the result in a HostPageCache.
type SitePageService struct {
	pages     *HostPageCache
	templates templateLoader
	configs   domainConfigLookup
	normalize hostname.Normalizer
	metrics   *MetricsService
	logger    *zap.Logger
	debug     bool
	renders   singleflight.Group
}

// NewSitePageService constructs a SitePageService.
func NewSitePageService(pages *HostPageCache, templates templateLoader, configs domainConfigLookup, metrics *MetricsService, logger *zap.Logger, cfg SitePageConfig) *SitePageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Normalize == nil {
		cfg.Normalize = hostname.ExtractDomainWithSubdomain
	}
	return &SitePageService{
		pages:     pages,
		templates: templates,
		configs:   configs,
		normalize: cfg.Normalize,
		metrics:   metrics,
		logger:    logger,
		debug:     cfg.Debug,
	}
}

// Pages exposes the underlying page cache.
func (s *SitePageService) Pages() *HostPageCache {
	return s.pages
}

// Render returns the page for host and whether it came from the cache. Concurrent cold
// renders of one host share a single render, which runs detached from the cancellation
// of whichever caller started it.
func (s *SitePageService) Render(ctx context.Context, host string) (string, bool, error) {
	domain := s.normalize(host)
	if html, ok := s.pages.Get(domain); ok {
		s.metrics.RecordPageLookup(true)
		return html, true, nil
	}
	s.metrics.RecordPageLookup(false)

	renderCtx := context.WithoutCancel(ctx)
	v, err, _ := s.renders.Do(domain, func() (interface{}, error) {
		if html, ok := s.pages.Get(domain); ok {
			return html, nil
		}
		start := time.Now()
		html, err := s.render(renderCtx, domain)
		if err != nil {
			return "", err
		}
		s.pages.Set(domain, html)
		s.metrics.ObservePageRender(time.Since(start))
		return html, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// Warm renders domain into the cache unless a fresh page is already there.
func (s *SitePageService) Warm(ctx context.Context, domain string) error {
	_, _, err := s.Render(ctx, domain)
	return err
}

// Sweep drops stale pages and returns how many were removed.
func (s *SitePageService) Sweep() int {
	removed := s.pages.Sweep()
	s.metrics.RecordPageEvictions(removed)
	return removed
}

func (s *SitePageService) render(ctx context.Context, domain string) (string, error) {
	var (
		config json.RawMessage
		tmpl   string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := s.configs.Lookup(gctx, domain)
		if err != nil {
			// an aborted lookup says nothing about the domain; never cache "{}" for it
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if s.debug {
				s.logger.Debug("domain config lookup failed", zap.String("domain", domain), zap.Error(err))
			}
			return nil
		}
		config = cfg
		return nil
	})
	g.Go(func() error {
		t, err := s.templates.Load(gctx)
		if err != nil {
			return err
		}
		tmpl = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return InjectConfig(tmpl, config, domain)
}

// InjectConfig replaces ConfigPlaceholder in tmpl with a script assigning
// window.APP_CONFIG. The object holds the keys of config in stored order followed by
// "domain"; a non-object config contributes no keys.
func InjectConfig(tmpl string, config json.RawMessage, domain string) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	if parsed := gjson.ParseBytes(config); len(config) > 0 && gjson.ValidBytes(config) && parsed.IsObject() {
		parsed.ForEach(func(key, value gjson.Result) bool {
			if key.String() == "domain" {
				return true
			}
			if !first {
				buf.WriteByte(',')
			}
			buf.WriteString(key.Raw)
			buf.WriteByte(':')
			buf.WriteString(value.Raw)
			first = false
			return true
		})
	}
	if !first {
		buf.WriteByte(',')
	}
	domainJSON, err := json.Marshal(domain)
	if err != nil {
		return "", fmt.Errorf("encode domain: %w", err)
	}
	buf.WriteString(`"domain":`)
	buf.Write(domainJSON)
	buf.WriteByte('}')

	var compact bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		return "", fmt.Errorf("compact app config: %w", err)
	}
	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, compact.Bytes())

	script := "<script>window.APP_CONFIG = " + escaped.String() + ";</script>"
	return strings.ReplaceAll(tmpl, ConfigPlaceholder, script), nil
}
