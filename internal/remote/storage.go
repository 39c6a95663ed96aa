// Package remote defines the object-storage contract for voizy audio blobs
// and a directory-backed implementation used for local setups and tests.
package remote

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/voizylabs/voizy/internal/debuglog"
)

// ObjectStorage moves audio blobs between the local disk and the remote
// store. Upload returns both a playback URL and the storage path the blob
// lives under.
type ObjectStorage interface {
	Upload(localPath string) (url, remotePath string, err error)
	GetDownloadURL(remotePath string) (string, error)
	Download(remotePath, destPath string) error
}

// DirStorage implements ObjectStorage over a local directory, addressing
// blobs with file:// URLs. It stands in for a real bucket in offline use.
type DirStorage struct {
	root string
}

func NewDirStorage(root string) (*DirStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &DirStorage{root: root}, nil
}

func (s *DirStorage) Upload(localPath string) (string, string, error) {
	remotePath := filepath.Base(localPath)
	dest := filepath.Join(s.root, remotePath)

	if err := copyFile(localPath, dest); err != nil {
		return "", "", fmt.Errorf("uploading %s: %w", localPath, err)
	}

	debuglog.Debugf("uploaded %s -> %s", localPath, dest)
	return "file://" + dest, remotePath, nil
}

func (s *DirStorage) GetDownloadURL(remotePath string) (string, error) {
	full := filepath.Join(s.root, remotePath)
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("resolving download url: %w", err)
	}
	return "file://" + full, nil
}

func (s *DirStorage) Download(remotePath, destPath string) error {
	full := filepath.Join(s.root, remotePath)
	if err := copyFile(full, destPath); err != nil {
		return fmt.Errorf("downloading %s: %w", remotePath, err)
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
