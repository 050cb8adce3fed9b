package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	pdfs := []string{
		"b_제77회 문제.pdf",
		"a_제77회 정답.PDF",
		"sub/c_제78회.pdf",
		".hidden/d.pdf",
		"sub/deeper/e_제79회.pdf",
	}
	for _, name := range pdfs {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "empty.pdf"), nil, 0o644))
	return root
}

func TestSearch_SearchDirectory(t *testing.T) {
	root := makeTree(t)
	search := NewSearch(1024)

	result, err := search.SearchDirectory(root, "")
	require.NoError(t, err)

	names := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a_제77회 정답.PDF", "b_제77회 문제.pdf", "c_제78회.pdf", "e_제79회.pdf"}, names)
	assert.Equal(t, 4, result.TotalCount)

	filtered, err := search.SearchDirectory(root, "정답")
	require.NoError(t, err)
	require.Len(t, filtered.Files, 1)
	assert.Equal(t, "정답", filtered.SearchQuery)

	_, err = search.SearchDirectory("", "")
	assert.Error(t, err)
	_, err = search.SearchDirectory(filepath.Join(root, "missing"), "")
	assert.Error(t, err)
}

func TestSearch_ExpandInputs(t *testing.T) {
	root := makeTree(t)
	search := NewSearch(1024)

	single := filepath.Join(root, "b_제77회 문제.pdf")
	files, err := search.ExpandInputs([]string{single, filepath.Join(root, "sub")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(root, "sub", "c_제78회.pdf"),
		filepath.Join(root, "sub", "deeper", "e_제79회.pdf"),
	}, files)

	_, err = search.ExpandInputs([]string{filepath.Join(root, "nope.pdf")})
	assert.Error(t, err)
}

func TestIsPDFFile(t *testing.T) {
	assert.True(t, isPDFFile("exam.pdf"))
	assert.True(t, isPDFFile("EXAM.PDF"))
	assert.False(t, isPDFFile("exam.pdf.txt"))
	assert.False(t, isPDFFile("pdf"))
}
