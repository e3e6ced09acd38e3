package plugins

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// ErrNoManifest is returned when a package carries none of ManifestNames at its root.
var ErrNoManifest = errors.New("plugin: no boot manifest")

const maxManifestSize = 4 << 20

// IsPackageSource reports whether name looks like a package the loader can
// open: a directory, a .zip archive or an xz-compressed tarball.
func IsPackageSource(name string, isDir bool) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if isDir {
		return true
	}
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz")
}

// LoadPackage opens a package source and parses its boot manifest.
func LoadPackage(source string) (*Package, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("plugin: stat %s: %w", source, err)
	}
	var found map[string][]byte
	lower := strings.ToLower(source)
	switch {
	case info.IsDir():
		found, err = readDirManifests(source)
	case strings.HasSuffix(lower, ".zip"):
		found, err = readZipManifests(source)
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		found, err = readTarXZManifests(source)
	default:
		return nil, fmt.Errorf("plugin: %s: unsupported package format", source)
	}
	if err != nil {
		return nil, err
	}
	name, data, ok := pickManifest(found)
	if !ok {
		return nil, fmt.Errorf("%w in %s", ErrNoManifest, source)
	}
	manifest, err := ParseManifest(name, data)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", source, err)
	}
	return NewPackage(manifest, filepath.Clean(source), name)
}

func pickManifest(found map[string][]byte) (string, []byte, bool) {
	for _, name := range ManifestNames {
		if data, ok := found[name]; ok {
			return name, data, true
		}
	}
	return "", nil, false
}

func readDirManifests(dir string) (map[string][]byte, error) {
	found := map[string][]byte{}
	for _, name := range ManifestNames {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("plugin: read %s: %w", filepath.Join(dir, name), err)
		}
		found[name] = data
	}
	return found, nil
}

func readZipManifests(archive string) (map[string][]byte, error) {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("plugin: open %s: %w", archive, err)
	}
	defer reader.Close()
	found := map[string][]byte{}
	for _, file := range reader.File {
		name := cleanEntryName(file.Name)
		if file.FileInfo().IsDir() || !IsManifestName(name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: open %s: %w", archive, file.Name, err)
		}
		data, err := readLimited(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: read %s: %w", archive, file.Name, err)
		}
		found[name] = data
	}
	return found, nil
}

func readTarXZManifests(archive string) (map[string][]byte, error) {
	file, err := os.Open(archive)
	if err != nil {
		return nil, fmt.Errorf("plugin: open %s: %w", archive, err)
	}
	defer file.Close()
	xzr, err := xz.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: xz: %w", archive, err)
	}
	tr := tar.NewReader(xzr)
	found := map[string][]byte{}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: tar: %w", archive, err)
		}
		name := cleanEntryName(header.Name)
		if header.Typeflag != tar.TypeReg || !IsManifestName(name) {
			continue
		}
		data, err := readLimited(tr)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: read %s: %w", archive, header.Name, err)
		}
		found[name] = data
	}
	return found, nil
}

func cleanEntryName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxManifestSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxManifestSize {
		return nil, fmt.Errorf("manifest exceeds %d bytes", maxManifestSize)
	}
	return data, nil
}
