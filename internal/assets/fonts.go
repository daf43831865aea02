package assets

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// maxFontBytes bounds the total size of inlined font data.
const maxFontBytes = 8 << 20

// fontFormats maps file extensions to CSS format hints and MIME types.
var fontFormats = map[string]struct{ format, mime string }{
	".woff2": {"woff2", "font/woff2"},
	".woff":  {"woff", "font/woff"},
	".ttf":   {"truetype", "font/ttf"},
	".otf":   {"opentype", "font/otf"},
}

// FontFace is one @font-face rule with its data inlined.
type FontFace struct {
	Family string
	Weight int
	Style  string // "normal" or "italic"
	Format string // CSS format() hint
	MIME   string
	Data   string // base64 encoded file contents
}

// DataURI returns the face as a data: URI suitable for src: url(...).
func (f FontFace) DataURI() string {
	return "data:" + f.MIME + ";base64," + f.Data
}

// FontLoader reads font faces from a directory on the filesystem.
type FontLoader struct {
	basePath string
}

// NewFontLoader creates a FontLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFontLoader(basePath string) (*FontLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Containment checks compare real paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	return &FontLoader{basePath: absPath}, nil
}

// Load reads every font file in the directory. Faces are ordered by family,
// weight, then style so the generated CSS is stable.
func (f *FontLoader) Load() ([]FontFace, error) {
	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	var (
		faces []FontFace
		total int
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		kind, ok := fontFormats[ext]
		if !ok {
			continue
		}

		face, err := parseFontName(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if err != nil {
			return nil, err
		}

		filePath := filepath.Join(f.basePath, entry.Name())
		if err := f.verifyPathContainment(filePath); err != nil {
			return nil, err
		}

		content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		total += len(content)
		if total > maxFontBytes {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrFontTooLarge, maxFontBytes)
		}

		face.Format = kind.format
		face.MIME = kind.mime
		face.Data = base64.StdEncoding.EncodeToString(content)
		faces = append(faces, face)
	}

	sort.Slice(faces, func(i, j int) bool {
		a, b := faces[i], faces[j]
		if a.Family != b.Family {
			return a.Family < b.Family
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.Style < b.Style
	})
	return faces, nil
}

// parseFontName splits "Family-Weight[-italic]" into a FontFace.
func parseFontName(stem string) (FontFace, error) {
	if err := ValidateAssetName(stem); err != nil {
		return FontFace{}, err
	}

	parts := strings.Split(stem, "-")
	style := "normal"
	if len(parts) > 2 && strings.EqualFold(parts[len(parts)-1], "italic") {
		style = "italic"
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return FontFace{}, fmt.Errorf("%w: %q", ErrInvalidFontName, stem)
	}

	weight, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || weight < 100 || weight > 900 || weight%100 != 0 {
		return FontFace{}, fmt.Errorf("%w: %q: weight must be 100..900", ErrInvalidFontName, stem)
	}

	family := strings.ReplaceAll(strings.Join(parts[:len(parts)-1], "-"), "_", " ")
	if !validFamily(family) {
		return FontFace{}, fmt.Errorf("%w: %q: family", ErrInvalidFontName, stem)
	}

	return FontFace{Family: family, Weight: weight, Style: style}, nil
}

// verifyPathContainment ensures the resolved file path is within basePath.
// Symlinks are resolved so a link cannot point outside the directory.
func (f *FontLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	// Separator suffix prevents /base/path matching /base/pathevil.
	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// LoadFonts is a convenience for NewFontLoader(dir).Load(). An empty dir
// yields no faces.
func LoadFonts(dir string) ([]FontFace, error) {
	if dir == "" {
		return nil, nil
	}
	loader, err := NewFontLoader(dir)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}
