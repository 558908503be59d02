package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/report/domain"
)

// Local stores artifacts in a directory. Put writes to a temp file in the same
// directory and renames it into place, so readers never see a partial workbook.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("init", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Kind() string {
	return config.ReportStorageLocal
}

func (l *Local) Put(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrap("put", name, err)
	}
	target, err := l.path(name)
	if err != nil {
		return "", wrap("put", name, err)
	}

	tmp, err := os.CreateTemp(l.dir, ".tmp-*.xlsx")
	if err != nil {
		return "", wrap("put", name, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", wrap("put", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", wrap("put", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", wrap("put", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", wrap("put", name, err)
	}
	committed = true
	return target, nil
}

func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	target, err := l.path(name)
	if err != nil {
		return nil, wrap("open", name, err)
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, wrap("open", name, err)
	}
	return f, nil
}

func (l *Local) Exists(ctx context.Context, name string) (bool, error) {
	target, err := l.path(name)
	if err != nil {
		return false, wrap("stat", name, err)
	}
	_, err = os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, wrap("stat", name, err)
	}
	return true, nil
}

var errInvalidName = errors.New("invalid artifact name")

func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errInvalidName
	}
	return filepath.Join(l.dir, name), nil
}
