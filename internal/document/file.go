package document

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// EditFunc receives the current contents of a document and returns the new
// contents.
type EditFunc func(current []byte) ([]byte, error)

// EditResult describes what Edit did to the file.
type EditResult struct {
	Path    string
	Changed bool
	Written bool
}

// lockPath is kept outside of the catalog tree so lock files never end up
// next to the checked in documents.
func lockPath(path string) string {
	sum := sha1.Sum([]byte(path))
	return filepath.Join(os.TempDir(), fmt.Sprintf("tagsync-%s.lock", hex.EncodeToString(sum[:8])))
}

// Edit runs a read-modify-write pass over the file at path while holding an
// advisory lock on it. The file is replaced atomically, and left untouched
// when the new contents are byte-for-byte identical or dryRun is set.
func Edit(ctx context.Context, path string, dryRun bool, edit EditFunc) (EditResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return EditResult{}, err
	}
	result := EditResult{Path: abs}

	lock := flock.New(lockPath(abs))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return result, fmt.Errorf("lock %s: %w", abs, err)
	}
	if !locked {
		return result, fmt.Errorf("lock %s: not acquired", abs)
	}
	defer lock.Unlock()

	info, err := os.Stat(abs)
	if err != nil {
		return result, err
	}
	current, err := os.ReadFile(abs)
	if err != nil {
		return result, err
	}

	next, err := edit(current)
	if err != nil {
		return result, err
	}

	result.Changed = !bytes.Equal(current, next)
	if !result.Changed || dryRun {
		return result, nil
	}

	err = writeAtomic(abs, next, info.Mode().Perm())
	if err != nil {
		return result, fmt.Errorf("write %s: %w", abs, err)
	}
	result.Written = true
	return result, nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), fmt.Sprintf(".%s.*.tmp", filepath.Base(path)))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
