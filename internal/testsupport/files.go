package testsupport

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/yeka/zip"
)

// ArchiveEntry describes one file written by WriteEncryptedArchive.
type ArchiveEntry struct {
	Name    string
	Content string
	// Plain stores the entry without encryption.
	Plain bool
}

// WriteEncryptedArchive writes an AES-256 protected ZIP at path. Entries
// default to a single "secret.txt".
func WriteEncryptedArchive(t testing.TB, path, password string, entries ...ArchiveEntry) {
	t.Helper()
	writeArchive(t, path, password, zip.AES256Encryption, entries)
}

// WriteZipCryptoArchive writes a legacy ZipCrypto protected ZIP at path.
func WriteZipCryptoArchive(t testing.TB, path, password string, entries ...ArchiveEntry) {
	t.Helper()
	writeArchive(t, path, password, zip.StandardEncryption, entries)
}

func writeArchive(t testing.TB, path, password string, method zip.EncryptionMethod, entries []ArchiveEntry) {
	t.Helper()

	if len(entries) == 0 {
		entries = []ArchiveEntry{{Name: "secret.txt", Content: "the quick brown fox\n"}}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		var w io.Writer
		if entry.Plain {
			w, err = zw.Create(entry.Name)
		} else {
			w, err = zw.Encrypt(entry.Name, password, method)
		}
		if err != nil {
			t.Fatalf("add %s: %v", entry.Name, err)
		}
		if _, err := io.WriteString(w, entry.Content); err != nil {
			t.Fatalf("write %s: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("finalize %s: %v", path, err)
	}
}
