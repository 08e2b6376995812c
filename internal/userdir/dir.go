package userdir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mentorlink/forum/internal/store"
)

// Directory imports user files under root into a user store.
type Directory struct {
	root   string
	users  store.UserWriter
	logger *slog.Logger

	mu   sync.Mutex
	sums map[string]string // abs path -> sha256 of last imported content
}

// New creates a Directory rooted at root. The directory must already exist.
func New(root string, users store.UserWriter, logger *slog.Logger) (*Directory, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("userdir: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("userdir: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("userdir: root is not a directory: %s", abs)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{root: abs, users: users, logger: logger, sums: make(map[string]string)}, nil
}

// Root returns the absolute directory path.
func (d *Directory) Root() string {
	return d.root
}

// Sync imports every user file under the root and returns how many were
// written. Files that fail to parse are logged and skipped.
func (d *Directory) Sync(ctx context.Context) (int, error) {
	return d.importTree(ctx, d.root)
}

func (d *Directory) importTree(ctx context.Context, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !IsUserFile(p) {
			return nil
		}
		changed, err := d.importFile(ctx, p)
		if err != nil {
			d.logger.Warn("userdir: import failed", slog.String("path", d.rel(p)), slog.String("error", err.Error()))
			return nil
		}
		if changed {
			n++
		}
		return nil
	})
	return n, err
}

// importFile upserts the user in p. It reports false when the content is
// unchanged since the last import.
func (d *Directory) importFile(ctx context.Context, p string) (bool, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	d.mu.Lock()
	same := d.sums[p] == digest
	d.mu.Unlock()
	if same {
		return false, nil
	}

	u, err := Parse(data, Stem(p))
	if err != nil {
		return false, err
	}
	if err := d.users.PutUser(ctx, u); err != nil {
		return false, err
	}

	d.mu.Lock()
	d.sums[p] = digest
	d.mu.Unlock()
	d.logger.Debug("userdir: imported", slog.String("path", d.rel(p)), slog.String("user_id", u.ID))
	return true, nil
}

func (d *Directory) forget(p string) {
	d.mu.Lock()
	delete(d.sums, p)
	d.mu.Unlock()
}

func (d *Directory) rel(p string) string {
	if r, err := filepath.Rel(d.root, p); err == nil {
		return r
	}
	return p
}
