package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"labstock/internal/models"
)

var (
	// ErrSnapshotExists is returned when a creation timestamp collides with
	// an artifact already on disk.
	ErrSnapshotExists = errors.New("snapshot already exists")
	// ErrSnapshotNotFound is returned for load/delete of an unknown artifact.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotRepository persists immutable, timestamped snapshots of one store.
// Artifacts are whole-file JSON documents named {prefix}_{timestamp} grouped
// into year-month bucket directories. Written artifacts are never modified.
type SnapshotRepository interface {
	Create(ctx context.Context, prefix string, payload any) (models.SnapshotRef, error)
	List(ctx context.Context, bucket string) ([]models.SnapshotRef, error)
	ListAll(ctx context.Context) ([]models.SnapshotRef, error)
	Buckets(ctx context.Context) ([]string, error)
	Load(ctx context.Context, ref models.SnapshotRef, dst any) error
	// LoadLatest decodes the most recently created snapshot into dst,
	// skipping artifacts whose name contains excludeMarker when it is
	// non-empty. Returns (nil, nil) when the store holds no snapshots.
	LoadLatest(ctx context.Context, excludeMarker string, dst any) (*models.SnapshotRef, error)
	Delete(ctx context.Context, ref models.SnapshotRef) error
	DeleteAll(ctx context.Context, bucket string) error
}

type fileSnapshotRepo struct {
	root string
	now  func() time.Time
}

// NewFileSnapshotRepository opens a snapshot store rooted at dir, creating
// the directory if needed.
func NewFileSnapshotRepository(dir string) (SnapshotRepository, error) {
	if dir == "" {
		return nil, errors.New("snapshot store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot store %s: %w", dir, err)
	}
	return &fileSnapshotRepo{root: dir, now: time.Now}, nil
}

func (r *fileSnapshotRepo) pathFor(ref models.SnapshotRef) string {
	return filepath.Join(r.root, ref.Bucket, ref.Name+".json")
}

func (r *fileSnapshotRepo) Create(ctx context.Context, prefix string, payload any) (models.SnapshotRef, error) {
	// Names carry second resolution, so two saves in the same wall-clock
	// second collide. Advance to the next free second instead of failing
	// the save; later saves still get later encoded timestamps.
	ts := r.now().Truncate(time.Second)
	ref := models.NewSnapshotRef(prefix, ts)
	path := r.pathFor(ref)
	for attempt := 0; ; attempt++ {
		if _, err := os.Stat(path); err != nil {
			break
		}
		if attempt == 2 {
			return models.SnapshotRef{}, fmt.Errorf("%w: %s", ErrSnapshotExists, ref.Name)
		}
		ts = ts.Add(time.Second)
		ref = models.NewSnapshotRef(prefix, ts)
		path = r.pathFor(ref)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.SnapshotRef{}, err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return models.SnapshotRef{}, fmt.Errorf("encode snapshot %s: %w", ref.Name, err)
	}

	// Write to a temporary path first so a crash mid-write can never leave
	// a half-written artifact under the published name.
	tmp, err := os.CreateTemp(filepath.Dir(path), ref.Name+".tmp-*")
	if err != nil {
		return models.SnapshotRef{}, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return models.SnapshotRef{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return models.SnapshotRef{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return models.SnapshotRef{}, err
	}
	return ref, nil
}

func (r *fileSnapshotRepo) Buckets(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, err
	}
	var buckets []string
	for _, entry := range entries {
		if entry.IsDir() {
			buckets = append(buckets, entry.Name())
		}
	}
	sort.Strings(buckets)
	return buckets, nil
}

func (r *fileSnapshotRepo) List(ctx context.Context, bucket string) ([]models.SnapshotRef, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, bucket))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var refs []models.SnapshotRef
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		created, ok := models.ParseSnapshotName(name)
		if !ok {
			// Not one of ours (manual drop-ins without a timestamp);
			// invisible to discovery.
			continue
		}
		refs = append(refs, models.SnapshotRef{Name: name, Bucket: bucket, CreatedAt: created})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].CreatedAt.After(refs[j].CreatedAt) })
	return refs, nil
}

func (r *fileSnapshotRepo) ListAll(ctx context.Context) ([]models.SnapshotRef, error) {
	buckets, err := r.Buckets(ctx)
	if err != nil {
		return nil, err
	}
	var all []models.SnapshotRef
	for _, bucket := range buckets {
		refs, err := r.List(ctx, bucket)
		if err != nil {
			return nil, err
		}
		all = append(all, refs...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (r *fileSnapshotRepo) Load(ctx context.Context, ref models.SnapshotRef, dst any) error {
	data, err := os.ReadFile(r.pathFor(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, ref.Name)
		}
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", ref.Name, err)
	}
	return nil
}

func (r *fileSnapshotRepo) LoadLatest(ctx context.Context, excludeMarker string, dst any) (*models.SnapshotRef, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, ref := range all {
		if excludeMarker != "" && strings.Contains(ref.Name, excludeMarker) {
			continue
		}
		if err := r.Load(ctx, ref, dst); err != nil {
			return nil, err
		}
		return &ref, nil
	}
	return nil, nil
}

func (r *fileSnapshotRepo) Delete(ctx context.Context, ref models.SnapshotRef) error {
	err := os.Remove(r.pathFor(ref))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, ref.Name)
	}
	return err
}

func (r *fileSnapshotRepo) DeleteAll(ctx context.Context, bucket string) error {
	if bucket == "" {
		return errors.New("bucket is required")
	}
	return os.RemoveAll(filepath.Join(r.root, bucket))
}
