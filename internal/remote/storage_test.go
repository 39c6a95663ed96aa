package remote

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirStorage_UploadAndDownload(t *testing.T) {
	root := filepath.Join(t.TempDir(), "bucket")
	storage, err := NewDirStorage(root)
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}

	src := filepath.Join(t.TempDir(), "rec.mp3")
	if err := os.WriteFile(src, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	url, remotePath, err := storage.Upload(src)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("expected file:// url, got %s", url)
	}
	if remotePath != "rec.mp3" {
		t.Errorf("expected remote path rec.mp3, got %s", remotePath)
	}

	resolved, err := storage.GetDownloadURL(remotePath)
	if err != nil {
		t.Fatalf("resolving url: %v", err)
	}
	if resolved != url {
		t.Errorf("expected %s, got %s", url, resolved)
	}

	dest := filepath.Join(t.TempDir(), "copy.mp3")
	if err := storage.Download(remotePath, dest); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("downloaded content mismatch: %q", data)
	}
}

func TestDirStorage_MissingBlob(t *testing.T) {
	storage, err := NewDirStorage(filepath.Join(t.TempDir(), "bucket"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := storage.GetDownloadURL("ghost.mp3"); err == nil {
		t.Error("expected error for missing blob url")
	}
	if err := storage.Download("ghost.mp3", filepath.Join(t.TempDir(), "out.mp3")); err == nil {
		t.Error("expected error for missing blob download")
	}
}

func TestDirStorage_UploadMissingLocalFile(t *testing.T) {
	storage, err := NewDirStorage(filepath.Join(t.TempDir(), "bucket"))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := storage.Upload(filepath.Join(t.TempDir(), "nope.mp3")); err == nil {
		t.Error("expected error for missing local file")
	}
}
