package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

const (
	downloadMaxAttempts = 3
	downloadBaseBackoff = 2 * time.Second
)

// Progress reports bytes transferred so far against the response's
// Content-Length (-1 when the server does not send one).
type Progress struct {
	BytesDone  int64
	BytesTotal int64
}

// ProgressFunc is called periodically during Download; it must not block.
type ProgressFunc func(Progress)

// Download fetches d's file from its declared remote repo to dest,
// retrying transient failures with exponential backoff (base 2s, three
// attempts total per §4.3). The write goes to dest+".tmp", renamed
// atomically to dest only on full success; the tmp file is removed on
// every failure path.
func Download(ctx context.Context, client *http.Client, d Descriptor, dest string, onProgress ProgressFunc) error {
	if client == nil {
		client = http.DefaultClient
	}

	url := remoteURL(d)
	tmp := dest + ".tmp"

	var lastErr error
	for attempt := 1; attempt <= downloadMaxAttempts; attempt++ {
		if err := downloadOnce(ctx, client, url, tmp, onProgress); err != nil {
			lastErr = err
			os.Remove(tmp)
			if attempt == downloadMaxAttempts {
				break
			}
			backoff := downloadBaseBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if err := os.Rename(tmp, dest); err != nil {
			os.Remove(tmp)
			return generator.GenerationFailed(fmt.Sprintf("renaming downloaded model into place: %v", err))
		}
		return nil
	}

	return generator.GenerationFailed(fmt.Sprintf("downloading %s after %d attempts: %v", d.ID, downloadMaxAttempts, lastErr))
}

func downloadOnce(ctx context.Context, client *http.Client, url, tmp string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching %s", res.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return err
	}

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	total := res.ContentLength
	var done int64
	buf := make([]byte, 256*1024)
	for {
		n, readErr := res.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			done += int64(n)
			if onProgress != nil {
				onProgress(Progress{BytesDone: done, BytesTotal: total})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	return nil
}

func remoteURL(d Descriptor) string {
	return fmt.Sprintf("https://huggingface.co/%s/resolve/main/%s", d.RemoteRepo, d.Filename)
}
