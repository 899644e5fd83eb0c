// Package sharedstate is a file-backed key-value channel shared between the
// timer's owning process and out-of-process readers such as the status
// command. The owner is the only writer of the snapshot; readers must treat
// its content as eventually consistent.
package sharedstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Command is one of the two operations an out-of-process consumer may route
// back to the timer's owning process.
type Command string

const (
	CommandToggle Command = "toggle"
	CommandEndDay Command = "end-day"
)

const commandPrefix = "cmd-"

var errUnknownCommand = errors.New("unknown timer command")

// pushSeq disambiguates commands pushed within the same nanosecond.
var pushSeq atomic.Uint64

// Store reads and writes keyed blobs in a shared directory.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating shared state dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Get returns the blob stored under key, or nil if the key has never been
// written.
func (s *Store) Get(key string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return b, err
}

// Set writes the blob under key. The write is atomic so that a reader never
// observes a torn snapshot.
func (s *Store) Set(key string, value []byte) error {
	target := filepath.Join(s.dir, key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, target)
}

// Delete removes the blob under key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// PushCommand queues a command for the timer's owning process. Commands are
// one file each so that concurrent pushers never contend on a shared file.
func (s *Store) PushCommand(cmd Command) error {
	if cmd != CommandToggle && cmd != CommandEndDay {
		return errUnknownCommand
	}

	name := fmt.Sprintf(
		"%s%d-%04d",
		commandPrefix,
		time.Now().UnixNano(),
		pushSeq.Add(1)%10000,
	)

	return os.WriteFile(
		filepath.Join(s.dir, name),
		[]byte(cmd),
		0o600,
	)
}

// DrainCommands returns the queued commands in push order and removes them.
// Only the timer's owning process may call this.
func (s *Store) DrainCommands() ([]Command, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), commandPrefix) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	var cmds []Command

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return cmds, err
		}

		switch Command(b) {
		case CommandToggle, CommandEndDay:
			cmds = append(cmds, Command(b))
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return cmds, err
		}
	}

	return cmds, nil
}
