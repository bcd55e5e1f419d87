// Package rowcache persists finished rows of a frame in a badger key-value
// store, so an interrupted render can resume without retracing them.
//
// Rows are stored under a frame key, an opaque string that must change
// whenever anything affecting the pixels of the frame changes.
package rowcache

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	"golang.org/x/xerrors"

	"whitted/rgb"
)

// Key prefixes that denote different tables in the key-value store.
const (
	KeyTypeRow uint32 = 0
)

// ErrCorrupt is returned for a stored row that cannot be decoded into the
// requested width.
var ErrCorrupt = errors.New("corrupt cached row")

const bytesPerPixel = 3 * 8

// FrameDigest reduces a frame key to the fixed-size form used in keys.
func FrameDigest(frameKey string) [sha256.Size]byte {
	return sha256.Sum256([]byte(frameKey))
}

// RowKey is the key of row y of a frame.
func RowKey(frame [sha256.Size]byte, y int) []byte {
	key := make([]byte, 4+sha256.Size+4)
	binary.BigEndian.PutUint32(key[0:4], KeyTypeRow)
	copy(key[4:4+sha256.Size], frame[:])
	binary.BigEndian.PutUint32(key[4+sha256.Size:], uint32(y))
	return key
}

// RowKeyPrefixAllRows is the prefix shared by every row of a frame.
func RowKeyPrefixAllRows(frame [sha256.Size]byte) []byte {
	key := make([]byte, 4+sha256.Size)
	binary.BigEndian.PutUint32(key[0:4], KeyTypeRow)
	copy(key[4:], frame[:])
	return key
}

// DecodeRowKey returns the row number of a key built by RowKey.
func DecodeRowKey(key []byte) (int, error) {
	if len(key) != 4+sha256.Size+4 {
		return 0, xerrors.Errorf("key has wrong length; got %d, want %d", len(key), 4+sha256.Size+4)
	}
	return int(binary.BigEndian.Uint32(key[4+sha256.Size:])), nil
}

func encodeRow(row []rgb.T) []byte {
	buf := make([]byte, len(row)*bytesPerPixel)
	for i, px := range row {
		for c := 0; c < 3; c++ {
			binary.BigEndian.PutUint64(buf[i*bytesPerPixel+c*8:], math.Float64bits(px[c]))
		}
	}
	return buf
}

func decodeRow(buf []byte, dst []rgb.T) error {
	if len(buf) != len(dst)*bytesPerPixel {
		return fmt.Errorf("%w: %d bytes for %d pixels", ErrCorrupt, len(buf), len(dst))
	}
	for i := range dst {
		for c := 0; c < 3; c++ {
			dst[i][c] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*bytesPerPixel+c*8:]))
		}
	}
	return nil
}

type Cache struct {
	DB *badger.DB
}

// Open opens or creates a cache in dataDir.  If clear is set, any existing
// contents are removed first.
func Open(dataDir string, clear bool) (*Cache, error) {
	if clear {
		if err := os.RemoveAll(dataDir); err != nil {
			return nil, xerrors.Errorf("while clearing cache dir %q: %w", dataDir, err)
		}
	}

	opts := badger.DefaultOptions(dataDir)
	opts.Logger = glogLogger{}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, xerrors.Errorf("while opening badger kv dir: %w", err)
	}

	return &Cache{DB: db}, nil
}

func (c *Cache) Close() error {
	if err := c.DB.Close(); err != nil {
		return xerrors.Errorf("while closing badger kv: %w", err)
	}
	return nil
}

// GetRow reads row y of the frame into dst, reporting whether it was
// present.  A stored row that does not match len(dst) is an ErrCorrupt.
func (c *Cache) GetRow(frameKey string, y int, dst []rgb.T) (bool, error) {
	key := RowKey(FrameDigest(frameKey), y)

	found := false
	err := c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := decodeRow(val, dst); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, xerrors.Errorf("while reading cached row %d: %w", y, err)
	}
	return found, nil
}

func (c *Cache) PutRow(frameKey string, y int, row []rgb.T) error {
	key := RowKey(FrameDigest(frameKey), y)
	val := encodeRow(row)

	for {
		err := c.DB.Update(func(txn *badger.Txn) error {
			return txn.Set(key, val)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		} else if err != nil {
			return xerrors.Errorf("while writing cached row %d: %w", y, err)
		}
		return nil
	}
}

// CachedRows lists the rows of a frame present in the cache, in ascending
// order.
func (c *Cache) CachedRows(frameKey string) ([]int, error) {
	prefix := RowKeyPrefixAllRows(FrameDigest(frameKey))

	var rows []int
	err := c.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			y, err := DecodeRowKey(it.Item().KeyCopy(nil))
			if err != nil {
				return err
			}
			rows = append(rows, y)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("while listing cached rows: %w", err)
	}
	return rows, nil
}

// DropFrame deletes every cached row of a frame.
func (c *Cache) DropFrame(frameKey string) error {
	rows, err := c.CachedRows(frameKey)
	if err != nil {
		return err
	}

	frame := FrameDigest(frameKey)
	const batch = 256
	for len(rows) > 0 {
		n := batch
		if n > len(rows) {
			n = len(rows)
		}
		err := c.DB.Update(func(txn *badger.Txn) error {
			for _, y := range rows[:n] {
				if err := txn.Delete(RowKey(frame, y)); err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		} else if err != nil {
			return xerrors.Errorf("while dropping cached rows: %w", err)
		}
		rows = rows[n:]
	}
	return nil
}

// glogLogger routes badger's logging into glog.
type glogLogger struct{}

func (glogLogger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintf(format, args...))
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintf(format, args...))
}

func (glogLogger) Infof(format string, args ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

func (glogLogger) Debugf(format string, args ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}
