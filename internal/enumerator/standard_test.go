package enumerator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloom/filescan/internal/config"
)

func collect(ch <-chan Entry) []Entry {
	var out []Entry
	for e := range ch {
		out = append(out, e)
	}
	return out
}

func names(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, filepath.Base(e.FullPath))
	}
	sort.Strings(out)
	return out
}

func TestStandardEnumeratesFlatDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("yy"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(entries))
}

func TestStandardRecursesIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "deeper")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "c.txt"), []byte("z"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{"c.txt"}, names(entries))
}

func TestStandardSkipsHiddenFilesByDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("x"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.IncludeHidden = false
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{"visible.txt"}, names(entries))
}

func TestStandardIncludesHiddenFilesWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.IncludeHidden = true
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{".hidden"}, names(entries))
}

func TestStandardAppliesExcludedPaths(t *testing.T) {
	dir := t.TempDir()
	vendor := filepath.Join(dir, "vendor")
	require.NoError(t, os.MkdirAll(vendor, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(vendor, "dep.go"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("x"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.ExcludedPaths = []string{"**/vendor/**"}
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{"main.go"}, names(entries))
}

func TestStandardAppliesExcludedExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.ExcludedExtensions = []string{".log"}
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{"a.txt"}, names(entries))
}

func TestStandardAppliesMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "small.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), []byte("xxxxxxxxxx"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.MaxFileSize = 5
	opts.RespectGitignore = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := collect(Standard(ctx, opts.Locations, opts))
	assert.Equal(t, []string{"small.txt"}, names(entries))
}

func TestStandardRespectsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		sub := filepath.Join(dir, "d", filepath.Join([]string{"x"}...))
		_ = os.MkdirAll(sub, 0755)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0644))

	opts := config.Default()
	opts.Locations = []string{dir}
	opts.RespectGitignore = false

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		collect(Standard(ctx, opts.Locations, opts))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enumeration did not terminate after context cancellation")
	}
}

func TestStandardClosesImmediatelyWithNoLocations(t *testing.T) {
	opts := config.Default()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		collect(Standard(ctx, nil, opts))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Standard with no locations did not close its output channel")
	}
}

func TestTicksFromTimeTruncatesToWholeSeconds(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 500_000_000, time.UTC)
	t2 := time.Date(2024, 1, 1, 0, 0, 0, 999_999_999, time.UTC)
	assert.Equal(t, ticksFromTime(t1), ticksFromTime(t2))
}
