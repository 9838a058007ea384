package texture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/logger"
)

var (
	// ErrTextureLoad wraps every failure to read, decode or upload a texture.
	ErrTextureLoad = errors.New("texture load failed")
	// ErrEmbeddedIndex is returned for "*N" references past the embedded images.
	ErrEmbeddedIndex = errors.New("embedded image index out of range")
	// ErrHandleCreation is returned when the device hands out a zero texture.
	ErrHandleCreation = errors.New("device returned no texture handle")
)

// Texture is a reference to an uploaded image. Handle 0 means the load failed.
type Texture struct {
	Handle uint32
	Role   Role
	Path   string
}

// Options controls how the cache decodes images.
type Options struct {
	// FlipVertical mirrors images before upload.
	FlipVertical bool
}

// Cache loads each distinct texture reference once and owns the uploaded handles.
// One cache belongs to one model; it is not safe for concurrent use.
type Cache struct {
	dev      gpu.Device
	baseDir  string
	opts     Options
	entries  map[string]Texture
	order    []string
	embedded [][]byte
	allocs   int
	log      *zap.Logger
}

// NewCache creates an empty cache resolving file references against baseDir.
func NewCache(dev gpu.Device, baseDir string, opts Options) *Cache {
	return &Cache{
		dev:     dev,
		baseDir: baseDir,
		opts:    opts,
		entries: make(map[string]Texture),
		log:     logger.Named("texture"),
	}
}

// SetEmbedded provides the encoded images that "*N" references resolve to.
func (c *Cache) SetEmbedded(images [][]byte) {
	c.embedded = images
}

// BaseDir returns the directory file references are resolved against.
func (c *Cache) BaseDir() string {
	return c.baseDir
}

// Resolve returns one Texture per ref, in order, stamped with role. Refs seen
// before are returned from the cache without touching the device. A ref that
// fails to load yields a Texture with Handle 0 and contributes to the returned
// error the first time it is seen; the failure is cached and never retried.
func (c *Cache) Resolve(refs []string, role Role) ([]Texture, error) {
	out := make([]Texture, 0, len(refs))
	var errs []error

	for _, ref := range refs {
		if cached, ok := c.entries[ref]; ok {
			if cached.Role != role {
				c.log.Warn("texture reused under a different role",
					zap.String("path", ref),
					zap.Stringer("loaded_as", cached.Role),
					zap.Stringer("requested_as", role))
				cached.Role = role
			}
			out = append(out, cached)
			continue
		}

		tex := Texture{Role: role, Path: ref}
		handle, err := c.load(ref)
		if err != nil {
			err = fmt.Errorf("%w: %q: %w", ErrTextureLoad, ref, err)
			c.log.Warn("texture failed to load", zap.String("path", ref), zap.Error(err))
			errs = append(errs, err)
		} else {
			tex.Handle = handle
			c.log.Debug("texture loaded", zap.String("path", ref), zap.Stringer("role", role), zap.Uint32("handle", handle))
		}

		c.entries[ref] = tex
		c.order = append(c.order, ref)
		out = append(out, tex)
	}

	return out, errors.Join(errs...)
}

func (c *Cache) load(ref string) (uint32, error) {
	data, name, err := c.read(ref)
	if err != nil {
		return 0, err
	}

	img, err := Decode(data, name)
	if err != nil {
		return 0, err
	}
	pixels, err := ToPixels(img, c.opts.FlipVertical)
	if err != nil {
		return 0, err
	}

	return c.upload(pixels)
}

func (c *Cache) read(ref string) ([]byte, string, error) {
	if idx, ok := embeddedIndex(ref); ok {
		if idx >= len(c.embedded) {
			return nil, "", fmt.Errorf("%w: %d of %d", ErrEmbeddedIndex, idx, len(c.embedded))
		}
		return c.embedded[idx], ref, nil
	}

	path := filepath.Join(c.baseDir, filepath.FromSlash(ref))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, path, nil
}

// embeddedIndex parses "*N" references.
func embeddedIndex(ref string) (int, bool) {
	rest, ok := strings.CutPrefix(ref, "*")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (c *Cache) upload(img gpu.Image) (uint32, error) {
	handle := c.dev.GenTexture()
	if handle == 0 {
		return 0, ErrHandleCreation
	}
	c.allocs++

	c.dev.BindTexture(handle)
	c.dev.TexImage2D(img)
	c.dev.GenerateMipmap()
	c.dev.SetSampling(gpu.DefaultSampling)
	c.dev.BindTexture(0)

	return handle, nil
}

// Entry returns the cached texture for ref as first loaded.
func (c *Cache) Entry(ref string) (Texture, bool) {
	t, ok := c.entries[ref]
	return t, ok
}

// Entries returns every cached texture in first-load order.
func (c *Cache) Entries() []Texture {
	out := make([]Texture, 0, len(c.order))
	for _, ref := range c.order {
		out = append(out, c.entries[ref])
	}
	return out
}

// Len returns the number of distinct references seen, including failures.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Allocations returns how many device textures the cache has created.
func (c *Cache) Allocations() int {
	return c.allocs
}

// Release deletes every uploaded texture and empties the cache.
func (c *Cache) Release() {
	for _, ref := range c.order {
		if h := c.entries[ref].Handle; h != 0 {
			c.dev.DeleteTexture(h)
		}
	}
	c.entries = make(map[string]Texture)
	c.order = nil
}
