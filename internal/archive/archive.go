// Package archive packs a result tree into a gzip tarball and uploads it to
// a pre-signed URL.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/vk/ximsweep/internal/ctxlog"
)

// ErrUpload is returned when the upload target rejects the archive.
var ErrUpload = errors.New("archive upload failed")

// ContentType is sent with every upload.
const ContentType = "application/gzip"

// Pack writes dir as a gzip tarball to w. Entry names are relative to the
// parent of dir, so the archive unpacks into a directory named like dir.
func Pack(dir string, w io.Writer) error {
	zw := gzip.NewWriter(w)
	tw := tar.NewWriter(zw)
	parent := filepath.Dir(dir)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("pack %s: %w", dir, err)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

// Uploader publishes result trees.
type Uploader struct {
	client *http.Client
}

// NewUploader creates an Uploader. A nil client means http.DefaultClient.
func NewUploader(client *http.Client) *Uploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{client: client}
}

// Publish packs dir into a temporary tarball and PUTs it to url.
func (u *Uploader) Publish(ctx context.Context, dir, url string) error {
	logger := ctxlog.FromContext(ctx)

	tmp, err := os.CreateTemp("", filepath.Base(dir)+"-*.tar.gz")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := Pack(dir, tmp); err != nil {
		return err
	}
	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, tmp)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", ContentType)
	req.ContentLength = size

	logger.Info("📦 Uploading results", "source", dir, "size", size)
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %s", ErrUpload, resp.Status)
	}
	logger.Info("Successfully uploaded results", "status", resp.Status)
	return nil
}
