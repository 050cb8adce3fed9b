package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-quiz-extractor/internal/testutil"
)

func TestNewService(t *testing.T) {
	unrestricted, err := NewService(1024, "")
	require.NoError(t, err)
	assert.Equal(t, "", unrestricted.ConfiguredDirectory())
	assert.Equal(t, int64(1024), unrestricted.MaxFileSize())

	dir := t.TempDir()
	restricted, err := NewService(1024, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, restricted.ConfiguredDirectory())
}

func TestService_OpenDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exam.pdf")
	require.NoError(t, testutil.WritePDF(path, []testutil.Text{
		{X: 72, Y: 700, S: "a"},
		{X: 83, Y: 700, S: "b"},
	}))

	svc, err := NewService(1024*1024, dir)
	require.NoError(t, err)
	svc.SetWordTolerance(7)

	doc, err := svc.OpenDocument(path)
	require.NoError(t, err)
	defer doc.Close()

	page, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, "ab", page.Text())

	_, err = svc.OpenDocument(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestService_PathRestriction(t *testing.T) {
	allowed := t.TempDir()
	other := t.TempDir()
	outside := filepath.Join(other, "exam.pdf")
	require.NoError(t, testutil.WritePDF(outside, nil))

	svc, err := NewService(1024*1024, allowed)
	require.NoError(t, err)

	_, err = svc.OpenDocument(outside)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security validation failed")

	_, err = svc.ValidateFile(outside)
	assert.Error(t, err)

	_, err = svc.SearchDirectory(other, "")
	assert.Error(t, err)

	_, err = svc.ExpandInputs([]string{outside})
	assert.Error(t, err)

	result, err := svc.SearchDirectory("", "")
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)

	open, err := NewService(1024*1024, "")
	require.NoError(t, err)
	vr, err := open.ValidateFile(outside)
	require.NoError(t, err)
	assert.True(t, vr.Valid, vr.Message)
}
