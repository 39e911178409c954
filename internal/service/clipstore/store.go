package clipstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PersistenceError — не удалось записать или прочитать клип реплики.
type PersistenceError struct {
	Index int
	Op    string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("clip %d: %s: %v", e.Index, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store хранит клипы реплик в каталоге под именами <index>.<ext>.
// Сборщик ищет клипы только по индексу.
type Store struct {
	dir string
	ext string
}

// New создаёт каталог при необходимости. ext без точки, по умолчанию mp3.
func New(dir, ext string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "mp3"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("clipstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, ext: ext}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Ext() string { return s.ext }

// Path возвращает путь клипа: <dir>/<index>.<ext>.
func (s *Store) Path(index int) string {
	return filepath.Join(s.dir, strconv.Itoa(index)+"."+s.ext)
}

// Save атомарно записывает клип: временный файл в том же каталоге, fsync, rename.
// Читатель либо не видит клип, либо видит его целиком.
func (s *Store) Save(index int, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, "."+strconv.Itoa(index)+".*.part")
	if err != nil {
		return &PersistenceError{Index: index, Op: "create", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &PersistenceError{Index: index, Op: "write", Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &PersistenceError{Index: index, Op: "sync", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PersistenceError{Index: index, Op: "close", Err: err}
	}
	if err = os.Rename(tmp.Name(), s.Path(index)); err != nil {
		return &PersistenceError{Index: index, Op: "rename", Err: err}
	}
	return nil
}

// Open открывает клип на чтение. Отсутствующий клип — PersistenceError с fs.ErrNotExist.
func (s *Store) Open(index int) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(index))
	if err != nil {
		return nil, &PersistenceError{Index: index, Op: "open", Err: err}
	}
	return f, nil
}

// Has сообщает, есть ли непустой клип для индекса.
func (s *Store) Has(index int) bool {
	fi, err := os.Stat(s.Path(index))
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// Remove удаляет клип; отсутствие клипа не ошибка.
func (s *Store) Remove(index int) error {
	if err := os.Remove(s.Path(index)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistenceError{Index: index, Op: "remove", Err: err}
	}
	return nil
}
