package content

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/logger"
)

// ErrNoContentFile is returned when no loadable file is found in an archive
var ErrNoContentFile = errors.New("no content file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// ErrEmptyContent is returned for zero-length content
var ErrEmptyContent = errors.New("content is empty")

// GameInfo is everything known about one loaded piece of content.
type GameInfo struct {
	// Path is what the core is given: the real file, the extracted temp
	// file, or "archive#entry" for in-memory archive content.
	Path  string
	Dir   string
	Stem  string
	Ext   string
	Data  []byte
	Size  int64
	Entry Descriptor

	InArchive    bool
	ArchivePath  string
	ArchiveEntry string
	// Virtual is set when Path names a file that only exists in the
	// core's virtual filesystem.
	Virtual bool
}

// Name returns the base file name, stem plus extension.
func (g *GameInfo) Name() string {
	if g.Ext == "" {
		return g.Stem
	}
	return g.Stem + "." + g.Ext
}

// Release drops the in-memory payload.
func (g *GameInfo) Release() {
	g.Data = nil
}

// VirtualFiles is a filesystem the core reads through its VFS interface.
type VirtualFiles interface {
	Active() bool
	AddFile(path string, data []byte) error
}

// Resolver matches content against the core's descriptors and loads it.
// Archive entries that must be passed by path are extracted to a temporary
// directory and cached; evicting an entry removes its files. When the core
// reads files through an active VirtualFiles they are placed there instead.
type Resolver struct {
	fs      afero.Fs
	tempDir string
	log     *logger.Logger

	mu       sync.Mutex
	original Set
	active   Set
	cache    *lru.Cache[string, extracted]
	virtual  VirtualFiles
}

type extracted struct {
	dir   string
	path  string
	entry string
}

// DefaultCacheSize is how many extracted archives are kept on disk.
const DefaultCacheSize = 8

// NewResolver creates a resolver reading from fs and extracting under
// tempDir.
func NewResolver(fs afero.Fs, tempDir string, cacheSize int, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	r := &Resolver{fs: fs, tempDir: tempDir, log: log}
	r.cache, _ = lru.NewWithEvict(cacheSize, func(key string, e extracted) {
		if err := r.fs.RemoveAll(e.dir); err != nil {
			r.log.Warn().Err(err).Str("archive", key).Msg("failed to remove extracted content")
		}
	})
	return r
}

// SetDescriptors installs the core's own descriptors, from system info.
func (r *Resolver) SetDescriptors(s Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.original = append(Set(nil), s...)
	r.active = append(Set(nil), s...)
}

// Override replaces the active descriptors. The core's original
// descriptors are appended at lowest priority so its own detection remains
// a fallback.
func (r *Resolver) Override(s Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = append(append(Set(nil), s...), r.original...)
}

// SetVirtual sets the filesystem full-path archive entries go to while it
// is active.
func (r *Resolver) SetVirtual(v VirtualFiles) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.virtual = v
}

func (r *Resolver) virtualFiles() VirtualFiles {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.virtual == nil || !r.virtual.Active() {
		return nil
	}
	return r.virtual
}

// Descriptors returns the active descriptor list.
func (r *Resolver) Descriptors() Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(Set(nil), r.active...)
}

// Resolve loads the content at p.
func (r *Resolver) Resolve(p string) (*GameInfo, error) {
	set := r.Descriptors()

	st, err := r.fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat content: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, p)
	}

	format, err := sniff(r.fs, p)
	if err != nil {
		return nil, err
	}
	// Cores that handle archives themselves list the archive extension.
	if format == formatRaw || set.lists(filepath.Ext(p)) {
		return r.resolveFile(set, p, st.Size())
	}
	return r.resolveArchive(set, format, p)
}

func (r *Resolver) resolveFile(set Set, p string, size int64) (*GameInfo, error) {
	d := set.Match(p)
	g := newGameInfo(p, path.Base(filepath.ToSlash(p)), d)
	g.Dir = filepath.Dir(p)
	g.Size = size

	if !d.NeedFullPath {
		f, err := r.fs.Open(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open content: %w", err)
		}
		defer f.Close()
		g.Data, err = limitedRead(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read content: %w", err)
		}
		g.Size = int64(len(g.Data))
	}
	if g.Size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, p)
	}
	return g, nil
}

func (r *Resolver) resolveArchive(set Set, format formatType, p string) (*GameInfo, error) {
	match := func(name string) bool { return set.Accepts(name) }
	if format == formatGzip && !strings.HasSuffix(strings.ToLower(p), ".tar.gz") && !strings.HasSuffix(strings.ToLower(p), ".tgz") {
		match = func(string) bool { return true }
	}

	vf := r.virtualFiles()
	var g *GameInfo
	err := extract(r.fs, format, p, match, func(name string, rd io.Reader) error {
		d := set.Match(name)
		g = newGameInfo(p+"#"+name, path.Base(filepath.ToSlash(name)), d)
		g.Dir = filepath.Dir(p)
		g.InArchive = true
		g.ArchivePath = p
		g.ArchiveEntry = name

		if d.NeedFullPath && vf != nil {
			vp, size, err := r.extractVirtual(vf, p, name, rd)
			if err != nil {
				return err
			}
			g.Path = vp
			g.Size = size
			g.Virtual = true
			return nil
		}
		if d.NeedFullPath {
			tmp, err := r.extractToTemp(p, name, rd)
			if err != nil {
				return err
			}
			g.Path = tmp
			st, err := r.fs.Stat(tmp)
			if err != nil {
				return err
			}
			g.Size = st.Size()
			return nil
		}
		data, err := limitedRead(rd)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		g.Data = data
		g.Size = int64(len(data))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if g.Size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, g.Path)
	}
	r.log.Debug().Str("format", format.String()).Str("entry", g.ArchiveEntry).Msg("content extracted")
	return g, nil
}

// extractVirtual places an archive entry in the virtual filesystem under
// a path no real file uses, keeping the entry's base name.
func (r *Resolver) extractVirtual(vf VirtualFiles, archive, entry string, rd io.Reader) (string, int64, error) {
	data, err := limitedRead(rd)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read %s: %w", entry, err)
	}
	vp := filepath.Join(r.tempDir, "virtual", filepath.Base(archive), path.Base(filepath.ToSlash(entry)))
	if err := vf.AddFile(vp, data); err != nil {
		return "", 0, fmt.Errorf("failed to add virtual file %s: %w", vp, err)
	}
	return vp, int64(len(data)), nil
}

// extractToTemp writes an archive entry to a temp directory, keeping its
// base name so cores that sniff file names still work.
func (r *Resolver) extractToTemp(archive, entry string, rd io.Reader) (string, error) {
	if e, ok := r.cache.Get(archive); ok && e.entry == entry {
		if _, err := r.fs.Stat(e.path); err == nil {
			return e.path, nil
		}
		r.cache.Remove(archive)
	}

	if err := r.fs.MkdirAll(r.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	dir, err := afero.TempDir(r.fs, r.tempDir, "content-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	dst := filepath.Join(dir, path.Base(filepath.ToSlash(entry)))
	f, err := r.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		_ = r.fs.RemoveAll(dir)
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, rd); err != nil {
		f.Close()
		_ = r.fs.RemoveAll(dir)
		return "", fmt.Errorf("failed to extract %s: %w", entry, err)
	}
	if err := f.Close(); err != nil {
		_ = r.fs.RemoveAll(dir)
		return "", err
	}

	r.cache.Add(archive, extracted{dir: dir, path: dst, entry: entry})
	return dst, nil
}

// Close removes every extracted temp file.
func (r *Resolver) Close() {
	r.cache.Purge()
}

func newGameInfo(p, base string, d Descriptor) *GameInfo {
	ext := filepath.Ext(base)
	return &GameInfo{
		Path:  p,
		Stem:  strings.TrimSuffix(base, ext),
		Ext:   strings.TrimPrefix(ext, "."),
		Entry: d,
	}
}
