// Package session owns the lifecycle of an open project: the loaded
// snapshot, the language provider, and the pipeline components built on
// top of them. A session is the unit shared between the CLI and the MCP
// server.
package session

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/lcr/internal/change"
	"github.com/standardbeagle/lcr/internal/commit"
	"github.com/standardbeagle/lcr/internal/config"
	"github.com/standardbeagle/lcr/internal/debug"
	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/provider"
	"github.com/standardbeagle/lcr/internal/provider/treesitter"
	"github.com/standardbeagle/lcr/internal/references"
	"github.com/standardbeagle/lcr/internal/resolver"
	"github.com/standardbeagle/lcr/internal/snapshot"
)

// selfWriteWindow bounds how long a commit's own filesystem events are
// swallowed before the path is treated as externally edited again.
const selfWriteWindow = 2 * time.Second

// Session holds the live state for one opened project.
type Session struct {
	cfg      *config.Config
	provider provider.Provider
	keywords *change.KeywordTable

	resolver  *resolver.Resolver
	tracker   *references.Tracker
	computer  *change.Computer
	committer *commit.Committer

	// stale flips to true when the watcher sees an external edit to a
	// tracked file. The session's own commits do not count. Cleared by
	// Reload.
	stale atomic.Bool

	// selfWrites records paths the committer touched, with timestamps, so
	// the watcher can recognise the resulting events as echoes.
	selfMu     sync.Mutex
	selfWrites map[string]time.Time

	watcher   *fsnotify.Watcher
	watchDone chan struct{}

	closeOnce sync.Once
}

// Open loads the project described by cfg and wires the refactoring
// pipeline over the production tree-sitter provider.
func Open(ctx context.Context, cfg *config.Config) (*Session, error) {
	return OpenWithProvider(ctx, cfg, treesitter.New())
}

// OpenWithProvider is Open with an explicit semantic provider. The
// provider is initialized before the scan so a broken build fails fast.
func OpenWithProvider(ctx context.Context, cfg *config.Config, p provider.Provider) (*Session, error) {
	if err := p.EnsureReady(); err != nil {
		return nil, err
	}

	project, err := snapshot.Load(ctx, cfg.Project.Root, snapshot.LoadOptions{
		Include:      cfg.Load.Include,
		Exclude:      cfg.Load.Exclude,
		Extensions:   cfg.Load.Extensions,
		MaxFileSize:  cfg.Load.MaxFileSize,
		MaxFileCount: cfg.Load.MaxFileCount,
	})
	if err != nil {
		return nil, err
	}
	debug.LogSession("opened %s: %d files\n", cfg.Project.Root, project.DocumentCount())

	keywords := change.DefaultKeywords()
	if cfg.Keywords.OverridePath != "" {
		if err := keywords.LoadOverrides(cfg.Keywords.OverridePath); err != nil {
			return nil, err
		}
	}

	s := &Session{
		cfg:        cfg,
		provider:   p,
		keywords:   keywords,
		resolver:   resolver.New(p),
		tracker:    references.New(p),
		computer:   change.New(p, keywords),
		selfWrites: map[string]time.Time{},
	}
	s.committer = commit.New(commitFS{s: s}, project)

	if cfg.Watch.Enabled {
		if err := s.startWatcher(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Snapshot returns the current project snapshot.
func (s *Session) Snapshot() *snapshot.Project {
	return s.committer.Current()
}

// Resolver returns the symbol resolver bound to this session's provider.
func (s *Session) Resolver() *resolver.Resolver { return s.resolver }

// Tracker returns the reference tracker.
func (s *Session) Tracker() *references.Tracker { return s.tracker }

// Computer returns the change computer.
func (s *Session) Computer() *change.Computer { return s.computer }

// Committer returns the transaction committer.
func (s *Session) Committer() *commit.Committer { return s.committer }

// Config returns the configuration the session was opened with.
func (s *Session) Config() *config.Config { return s.cfg }

// Stale reports whether a tracked file changed on disk since the last
// load or reload. A stale session still answers queries against its
// in-memory snapshot, but results carry a staleness marker.
func (s *Session) Stale() bool {
	return s.stale.Load()
}

// Reload rescans the project from disk and replaces the held snapshot.
// All previously issued symbol handles become stale.
func (s *Session) Reload(ctx context.Context) error {
	project, err := snapshot.Load(ctx, s.cfg.Project.Root, snapshot.LoadOptions{
		Include:      s.cfg.Load.Include,
		Exclude:      s.cfg.Load.Exclude,
		Extensions:   s.cfg.Load.Extensions,
		MaxFileSize:  s.cfg.Load.MaxFileSize,
		MaxFileCount: s.cfg.Load.MaxFileCount,
	})
	if err != nil {
		return err
	}
	s.committer.Replace(project)
	s.stale.Store(false)
	debug.LogSession("reloaded %s: %d files\n", s.cfg.Project.Root, project.DocumentCount())
	return nil
}

// Close stops the file watcher. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.watcher != nil {
			err = s.watcher.Close()
			<-s.watchDone
		}
	})
	return err
}

func (s *Session) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return lcrerrors.Wrap(lcrerrors.CodeConfig, err, "failed to start file watcher")
	}

	// Watch every directory containing tracked files. fsnotify watches
	// directories, not globs, so walk once at startup.
	dirs := map[string]bool{}
	root := s.cfg.Project.Root
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		dirs[path] = true
		return nil
	})
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			debug.LogSession("watch failed for %s: %v\n", dir, err)
		}
	}

	s.watcher = w
	s.watchDone = make(chan struct{})
	debounce := time.Duration(s.cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	go s.watchLoop(debounce)
	return nil
}

// watchLoop marks the session stale after a burst of external edits
// settles. Events for untracked paths and for the committer's own writes
// are ignored.
func (s *Session) watchLoop(debounce time.Duration) {
	defer close(s.watchDone)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.ownWrite(ev.Name) || !s.tracksPath(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-timerC:
			s.stale.Store(true)
			debug.LogSession("external edit detected, session marked stale\n")
			timer = nil
			timerC = nil
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (s *Session) tracksPath(path string) bool {
	_, ok := s.Snapshot().DocumentByPath(path)
	return ok
}

func (s *Session) noteSelfWrite(path string) {
	s.selfMu.Lock()
	s.selfWrites[path] = time.Now()
	s.selfMu.Unlock()
}

// ownWrite reports whether the path was touched by this session's committer
// recently enough that a watcher event for it is an echo, not an external
// edit. An edit by someone else inside the window is missed; the next event
// after the window still marks the session stale.
func (s *Session) ownWrite(path string) bool {
	s.selfMu.Lock()
	defer s.selfMu.Unlock()
	at, ok := s.selfWrites[path]
	if !ok {
		return false
	}
	if time.Since(at) > selfWriteWindow {
		delete(s.selfWrites, path)
		return false
	}
	return true
}

// commitFS routes the committer's operations to the real filesystem while
// recording each touched path on the session.
type commitFS struct {
	s *Session
}

func (f commitFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	f.s.noteSelfWrite(path)
	return commit.OSFileSystem{}.WriteFile(path, data, perm)
}

func (f commitFS) Remove(path string) error {
	f.s.noteSelfWrite(path)
	return commit.OSFileSystem{}.Remove(path)
}

func (f commitFS) Rename(oldPath, newPath string) error {
	f.s.noteSelfWrite(oldPath)
	f.s.noteSelfWrite(newPath)
	return commit.OSFileSystem{}.Rename(oldPath, newPath)
}

func (f commitFS) MkdirAll(path string, perm fs.FileMode) error {
	return commit.OSFileSystem{}.MkdirAll(path, perm)
}
