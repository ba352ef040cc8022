package archive_test

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ximsweep/internal/archive"
)

func resultTree(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "xim_20261019_preset-weaver")
	for name, content := range map[string]string{
		"sweep.yaml":             "mode: weaver\n",
		"xim_000/ximout_cct.txt": "avg 1.5\n",
		"xim_000/manifest.yaml":  "fields_version: 1\n",
		"src/scheduler/varys.cc": "// varys\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// unpack lists the regular files of a gzip tarball with their contents.
func unpack(t *testing.T, r io.Reader) map[string]string {
	t.Helper()
	zr, err := gzip.NewReader(r)
	require.NoError(t, err)
	tr := tar.NewReader(zr)

	files := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = string(data)
	}
	return files
}

func TestPack(t *testing.T) {
	// --- Arrange ---
	dir := resultTree(t)
	var buf bytes.Buffer

	// --- Act ---
	require.NoError(t, archive.Pack(dir, &buf))

	// --- Assert ---
	files := unpack(t, &buf)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"xim_20261019_preset-weaver/src/scheduler/varys.cc",
		"xim_20261019_preset-weaver/sweep.yaml",
		"xim_20261019_preset-weaver/xim_000/manifest.yaml",
		"xim_20261019_preset-weaver/xim_000/ximout_cct.txt",
	}, names)
	assert.Equal(t, "avg 1.5\n", files["xim_20261019_preset-weaver/xim_000/ximout_cct.txt"])
}

func TestPublish(t *testing.T) {
	// --- Arrange ---
	dir := resultTree(t)
	var (
		gotMethod, gotType string
		gotLength          int64
		gotFiles           map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotType, gotLength = r.Method, r.Header.Get("Content-Type"), r.ContentLength
		gotFiles = unpack(t, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// --- Act ---
	err := archive.NewUploader(srv.Client()).Publish(context.Background(), dir, srv.URL+"/bucket/results.tar.gz?sig=abc")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, archive.ContentType, gotType)
	assert.Positive(t, gotLength)
	assert.Equal(t, "mode: weaver\n", gotFiles["xim_20261019_preset-weaver/sweep.yaml"])
}

func TestPublish_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := archive.NewUploader(srv.Client()).Publish(context.Background(), resultTree(t), srv.URL)

	require.ErrorIs(t, err, archive.ErrUpload)
	assert.Contains(t, err.Error(), "403")
}

func TestPublish_MissingDir(t *testing.T) {
	err := archive.NewUploader(nil).Publish(context.Background(), filepath.Join(t.TempDir(), "absent"), "http://127.0.0.1:1/")

	require.ErrorIs(t, err, os.ErrNotExist)
}
