package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeBaseHref(t *testing.T) {
	require.Equal(t, "", ComputeBaseHref("index.md"))
	require.Equal(t, "../", ComputeBaseHref(filepath.Join("posts", "a.md")))
	require.Equal(t, "../../", ComputeBaseHref(filepath.Join("posts", "2024", "a.md")))
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "site.yml")
	require.False(t, PathExists(file))
	require.NoError(t, os.WriteFile(file, nil, 0644))
	require.True(t, PathExists(file))
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "my-first-post", Slugify("My First  Post"))
	require.Equal(t, "", Slugify("   "))
}
