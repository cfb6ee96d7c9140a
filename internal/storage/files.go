package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/google/bundletool-sub016/internal/engine"
)

var manifestExts = []string{".yaml", ".yml", ".json"}

// FileStore serves archive manifests from a directory, one file per app.
// The app id is the manifest's packageName, or the file name without
// extension when the manifest carries none.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

func (s *FileStore) Dir() string { return s.dir }

// IsManifest reports whether path names a file the store would load.
func IsManifest(path string) bool {
	return slices.Contains(manifestExts, strings.ToLower(filepath.Ext(path)))
}

func (s *FileStore) LoadArchives(ctx context.Context) ([]ArchiveRow, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read manifest dir: %w", err)
	}
	var (
		out     []ArchiveRow
		decoded error
	)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !IsManifest(e.Name()) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		a, err := ReadManifest(path)
		if err != nil {
			decoded = multierr.Append(decoded, err)
			continue
		}
		appID := a.PackageName
		if appID == "" {
			appID = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		out = append(out, ArchiveRow{AppID: appID, VersionCode: a.VersionCode, Archive: a})
	}
	return out, decoded
}

// ReadManifest decodes one YAML or JSON archive manifest.
func ReadManifest(path string) (*engine.Archive, error) {
	var a engine.Archive
	if err := decodeFile(path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReadDeviceSpec decodes one YAML or JSON device description.
func ReadDeviceSpec(path string) (engine.DeviceSpec, error) {
	var d engine.DeviceSpec
	err := decodeFile(path, &d)
	return d, err
}

func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// JSON documents are valid YAML, so one decoder serves both.
	if err := yaml.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
