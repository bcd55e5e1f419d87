// Package objstore reads and writes whole objects named by URL: either
// gs://bucket/object in Google Cloud Storage, or a local file path.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	googleopt "google.golang.org/api/option"
)

const tracerName = "whitted/objstore"

const gcsScheme = "gs://"

// Location is a parsed object URL.
type Location struct {
	// Bucket and Object are set for GCS locations.
	Bucket string
	Object string

	// Path is set for local files.
	Path string
}

func (l Location) IsGCS() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsGCS() {
		return gcsScheme + l.Bucket + "/" + l.Object
	}
	return l.Path
}

// Parse splits a URL into a Location.  Anything without the gs:// scheme
// is a local path.
func Parse(url string) (Location, error) {
	if !strings.HasPrefix(url, gcsScheme) {
		if url == "" {
			return Location{}, errors.New("empty object location")
		}
		return Location{Path: url}, nil
	}

	rest := strings.TrimPrefix(url, gcsScheme)
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 || slash == len(rest)-1 {
		return Location{}, fmt.Errorf("malformed GCS location %q; want gs://bucket/object", url)
	}
	return Location{Bucket: rest[:slash], Object: rest[slash+1:]}, nil
}

// IsNotExist reports whether err says the object does not exist, in either
// backend.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrObjectNotExist)
}

// Store opens objects.  The GCS client is created on first use, so a Store
// that only touches local files never needs credentials.
type Store struct {
	opts []googleopt.ClientOption

	mu  sync.Mutex
	gcs *storage.Client
}

func New(opts ...googleopt.ClientOption) *Store {
	return &Store{opts: opts}
}

func (s *Store) client(ctx context.Context) (*storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gcs != nil {
		return s.gcs, nil
	}

	opts := append([]googleopt.ClientOption{googleopt.WithGRPCConnectionPool(1)}, s.opts...)
	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}
	s.gcs = gcs
	return gcs, nil
}

// Close releases the GCS client, if one was created.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gcs == nil {
		return nil
	}
	if err := s.gcs.Close(); err != nil {
		return fmt.Errorf("while closing GCS client: %w", err)
	}
	s.gcs = nil
	return nil
}

// Open opens the object at url for reading.
func (s *Store) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.Open")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	r, err := s.open(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return r, nil
}

func (s *Store) open(ctx context.Context, url string) (io.ReadCloser, error) {
	loc, err := Parse(url)
	if err != nil {
		return nil, err
	}

	if !loc.IsGCS() {
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("while opening file: %w", err)
		}
		return f, nil
	}

	gcs, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	r, err := gcs.Bucket(loc.Bucket).Object(loc.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("while opening reader for object %v: %w", loc, err)
	}
	return r, nil
}

// ReadAll returns the contents of the object at url.
func (s *Store) ReadAll(ctx context.Context, url string) ([]byte, error) {
	r, err := s.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("while reading from %s: %w", url, err)
	}
	return data, nil
}

// Create opens the object at url for writing, replacing any existing
// object.  For GCS, the object only appears once the writer is closed
// without error.
func (s *Store) Create(ctx context.Context, url string) (io.WriteCloser, error) {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.Create")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	w, err := s.create(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return w, nil
}

func (s *Store) create(ctx context.Context, url string) (io.WriteCloser, error) {
	loc, err := Parse(url)
	if err != nil {
		return nil, err
	}

	if !loc.IsGCS() {
		if dir := filepath.Dir(loc.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("while creating directory %q: %w", dir, err)
			}
		}
		f, err := os.Create(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("while creating file: %w", err)
		}
		return f, nil
	}

	gcs, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	w := gcs.Bucket(loc.Bucket).Object(loc.Object).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(loc.Object))
	return w, nil
}

// WriteAll replaces the object at url with data.
func (s *Store) WriteAll(ctx context.Context, url string, data []byte) error {
	w, err := s.Create(ctx, url)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("while writing to %s: %w", url, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing %s: %w", url, err)
	}
	return nil
}
