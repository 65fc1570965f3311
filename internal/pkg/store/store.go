package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
)

var (
	// ErrNoBackend is returned when a chain has nothing configured.
	ErrNoBackend = errors.New("store: no content store configured")
	// ErrUnknownRef is returned for references no backend of the chain produced.
	ErrUnknownRef = errors.New("store: unknown content reference")
)

// Meta describes an uploaded object.
type Meta struct {
	Name        string
	ContentType string
	SHA256      string
}

// Backend is one content store.
type Backend interface {
	Name() string
	// Upload stores data and returns the backend's content id.
	Upload(ctx context.Context, data []byte, meta Meta) (string, error)
	Download(ctx context.Context, cid string) ([]byte, error)
}

// Chain tries backends in priority order. The first successful upload wins.
// References have the form "<backend>://<cid>".
type Chain struct {
	backends []Backend
	log      *log.Helper
}

// NewChain creates a chain over backends, highest priority first.
func NewChain(logger log.Logger, backends ...Backend) *Chain {
	return &Chain{
		backends: backends,
		log:      log.NewHelper(log.With(logger, "module", "pkg/store")),
	}
}

// Backends returns the backend names in priority order.
func (c *Chain) Backends() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

// Upload stores data on the first backend that accepts it. When every backend
// fails the individual errors are joined.
func (c *Chain) Upload(ctx context.Context, data []byte, meta Meta) (string, error) {
	if len(c.backends) == 0 {
		return "", ErrNoBackend
	}

	var errs []error
	for _, b := range c.backends {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		cid, err := b.Upload(ctx, data, meta)
		if err != nil {
			c.log.Warnf("Upload to %s failed, trying next backend: %v", b.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		ref := FormatRef(b.Name(), cid)
		c.log.Debugf("Stored %s as %s", meta.Name, ref)
		return ref, nil
	}
	return "", fmt.Errorf("store: all backends failed: %w", errors.Join(errs...))
}

// Load fetches the object behind ref from the backend that stored it.
func (c *Chain) Load(ctx context.Context, ref string) ([]byte, error) {
	name, cid, ok := ParseRef(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}
	for _, b := range c.backends {
		if b.Name() == name {
			return b.Download(ctx, cid)
		}
	}
	return nil, fmt.Errorf("%w: backend %q not configured", ErrUnknownRef, name)
}

// FormatRef joins a backend name and a content id.
func FormatRef(backend, cid string) string {
	return backend + "://" + cid
}

// ParseRef splits a reference produced by FormatRef.
func ParseRef(ref string) (backend, cid string, ok bool) {
	backend, cid, ok = strings.Cut(ref, "://")
	if !ok || backend == "" || cid == "" {
		return "", "", false
	}
	return backend, cid, true
}
