package archive

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDetect(t *testing.T) {
	var gz, x bytes.Buffer
	for _, c := range []struct {
		buf *bytes.Buffer
		c   Compression
	}{{&gz, Gzip}, {&x, XZ}} {
		w, err := NewCompressor(c.buf, c.c)
		if err != nil {
			t.Fatalf("NewCompressor(%s) error: %v", c.c, err)
		}
		w.Write([]byte("hello"))
		w.Close()
	}

	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"gzip", gz.Bytes(), Gzip},
		{"xz", x.Bytes(), XZ},
		{"plain", []byte("// @char Mark {0-1}"), None},
		{"empty", nil, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	tests := map[string]Compression{
		"a.ts":        None,
		"a.json.xz":   XZ,
		"a.json.gz":   Gzip,
		"docs.tgz":    Gzip,
		"docs.tar.xz": XZ,
	}
	for path, want := range tests {
		if got := FromPath(path); got != want {
			t.Errorf("FromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestIsTar(t *testing.T) {
	for path, want := range map[string]bool{
		"docs.tar":    true,
		"docs.tar.gz": true,
		"docs.tgz":    true,
		"docs.tar.xz": true,
		"docs.md":     false,
		"docs.md.xz":  false,
	} {
		if got := IsTar(path); got != want {
			t.Errorf("IsTar(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("const a = 1\n// @char Mark {0-4}\nhello")

	for _, name := range []string{"plain.ts", "sample.ts.gz", "sample.ts.xz", "nested/dir/out.json.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, content); err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			raw, _ := os.ReadFile(path)
			if got := Detect(raw); got != FromPath(name) {
				t.Errorf("written compression = %s, want %s", got, FromPath(name))
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Errorf("ReadFile() = %q, want %q", got, content)
			}
		})
	}
}

func TestReadAll(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewCompressor(&buf, XZ)
	w.Write([]byte("piped"))
	w.Close()

	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if string(got) != "piped" {
		t.Errorf("ReadAll() = %q", got)
	}
}

func TestDecompressCorrupted(t *testing.T) {
	for name, data := range map[string][]byte{
		"gzip": append([]byte{0x1f, 0x8b}, "garbage"...),
		"xz":   append(append([]byte{}, xzMagic...), "garbage"...),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Decompress(data); err == nil {
				t.Error("expected error for corrupted stream")
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.ts")); err == nil {
		t.Error("expected error for missing file")
	}
}

func createTestTar(t *testing.T, path string, files map[string]string) {
	t.Helper()
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	tw := tar.NewWriter(w)
	if err := tw.WriteHeader(&tar.Header{Name: "docs/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
		t.Fatalf("write dir header: %v", err)
	}
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func TestIterate(t *testing.T) {
	for _, name := range []string{"docs.tar", "docs.tar.gz", "docs.tar.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			createTestTar(t, path, map[string]string{"docs/a.md": "# A", "docs/b.md": "# B"})

			got := map[string]string{}
			err := Iterate(path, func(h *tar.Header, r io.Reader) (bool, error) {
				data, err := io.ReadAll(r)
				got[h.Name] = string(data)
				return false, err
			})
			if err != nil {
				t.Fatalf("Iterate() error: %v", err)
			}
			if len(got) != 2 || got["docs/a.md"] != "# A" || got["docs/b.md"] != "# B" {
				t.Errorf("entries = %v", got)
			}
		})
	}
}

func TestIterateStopEarly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.tar")
	createTestTar(t, path, map[string]string{"a.md": "a", "b.md": "b"})

	count := 0
	err := Iterate(path, func(*tar.Header, io.Reader) (bool, error) {
		count++
		return true, nil
	})
	if err != nil || count != 1 {
		t.Errorf("Iterate() visited %d entries, err %v; want 1, nil", count, err)
	}
}

func TestIterateErrors(t *testing.T) {
	if err := Iterate(filepath.Join(t.TempDir(), "missing.tar"), nil); err == nil {
		t.Error("expected error for missing archive")
	}

	path := filepath.Join(t.TempDir(), "bad.tar.xz")
	if err := os.WriteFile(path, []byte("not xz"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Iterate(path, nil); err == nil {
		t.Error("expected error for corrupted xz archive")
	}

	path = filepath.Join(t.TempDir(), "bad.tar")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 1024), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Iterate(path, nil); err == nil {
		t.Error("expected error for corrupted tar")
	}
}
