package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
)

type templateFilesStub struct {
	content string
	err     error
	reads   int
}

func (f *templateFilesStub) ReadFile(name string) ([]byte, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.content), nil
}

func TestPageTemplateSourceCachesForTTL(t *testing.T) {
	clock := newFakeClock()
	files := &templateFilesStub{content: "<html>v1</html>"}
	source := NewPageTemplateSource(files, "index.html", time.Hour, clock.Now)

	tmpl, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<html>v1</html>", tmpl)

	files.content = "<html>v2</html>"
	clock.Advance(59 * time.Minute)
	tmpl, err = source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<html>v1</html>", tmpl)
	assert.Equal(t, 1, files.reads)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, source.Sweep())
	tmpl, err = source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<html>v2</html>", tmpl)
	assert.Equal(t, 2, files.reads)
}

func TestPageTemplateSourceErrorsAreNotCached(t *testing.T) {
	files := &templateFilesStub{err: errors.New("no such file")}
	source := NewPageTemplateSource(files, "", 0, nil)

	_, err := source.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTemplateUnavailable.Code, appErrors.FromError(err).Code)

	files.err = nil
	files.content = "ok"
	tmpl, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", tmpl)

	source.Invalidate()
	_, err = source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, files.reads)
}
