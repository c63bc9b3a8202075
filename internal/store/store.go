package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/pixdeck/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketImages = []byte("images")
	bucketAlbums = []byte("albums")

	allBuckets = [][]byte{bucketImages, bucketAlbums}
)

const albumListKey = "list"

// GalleryStore implements domain.Store using BoltDB.
type GalleryStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	// Removed on Close when the store owns a throwaway directory
	tempDir string
}

// NewGalleryStore opens the cache under baseCacheDir, namespaced per server.
// An empty baseCacheDir selects memory-only mode.
func NewGalleryStore(baseCacheDir, serverURL string) (*GalleryStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &GalleryStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return open(dir)
}

// NewSessionStore opens a BoltDB cache in a fresh temp directory that is
// removed on Close. Nothing outlives the session.
func NewSessionStore() (*GalleryStore, error) {
	dir, err := os.MkdirTemp("", "pixdeck-session-")
	if err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	s, err := open(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	s.tempDir = dir
	return s, nil
}

func open(dir string) (*GalleryStore, error) {
	dbPath := filepath.Join(dir, "pixdeck.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &GalleryStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *GalleryStore) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.tempDir != "" {
		if rmErr := os.RemoveAll(s.tempDir); err == nil {
			err = rmErr
		}
	}
	return err
}

// === Generic helpers ===

func (s *GalleryStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *GalleryStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *GalleryStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Image details (never invalidated, only cleared by InvalidateAll) ===

func (s *GalleryStore) GetImageDetail(id string) (*domain.ImageDetail, bool) {
	var detail domain.ImageDetail
	if !s.get(bucketImages, id, &detail) {
		return nil, false
	}
	return &detail, true
}

func (s *GalleryStore) SaveImageDetail(detail *domain.ImageDetail) error {
	if detail == nil || detail.ID == "" {
		return fmt.Errorf("image detail without id: %w", domain.ErrInvalidInput)
	}
	return s.set(bucketImages, detail.ID, detail)
}

// === Albums ===

func (s *GalleryStore) GetAlbums() ([]domain.AlbumItem, bool) {
	var albums []domain.AlbumItem
	ok := s.get(bucketAlbums, albumListKey, &albums)
	return albums, ok
}

func (s *GalleryStore) SaveAlbums(albums []domain.AlbumItem) error {
	return s.set(bucketAlbums, albumListKey, albums)
}

func (s *GalleryStore) GetAlbum(id string) (*domain.Album, bool) {
	var album domain.Album
	if !s.get(bucketAlbums, "album:"+id, &album) {
		return nil, false
	}
	return &album, true
}

func (s *GalleryStore) SaveAlbum(album *domain.Album) error {
	if album == nil || album.ID == "" {
		return fmt.Errorf("album without id: %w", domain.ErrInvalidInput)
	}
	return s.set(bucketAlbums, "album:"+album.ID, album)
}

func (s *GalleryStore) InvalidateAlbums() {
	s.delete(bucketAlbums, albumListKey)
}

func (s *GalleryStore) InvalidateAlbum(id string) {
	s.delete(bucketAlbums, "album:"+id)
}

func (s *GalleryStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Recreate buckets; deleting under a cursor skips keys
	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if tx.Bucket(bucket) != nil {
				if err := tx.DeleteBucket(bucket); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
