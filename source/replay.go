package source

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/rimage"
)

// ReplaySource replays a fixed color and depth image pair as a live stream.
type ReplaySource struct {
	colorPath string
	depthPath string
	logger    logging.Logger

	mu          sync.Mutex
	dm          *rimage.DepthMap
	img         *rimage.Image
	generation  int
	warnedModes bool

	watcher       *fsnotify.Watcher
	cancel        func()
	activeWorkers sync.WaitGroup
}

// NewReplaySource loads the pair of images. With watch set, the images are reloaded whenever
// either file changes on disk.
func NewReplaySource(colorPath, depthPath string, watch bool, logger logging.Logger) (*ReplaySource, error) {
	rs := &ReplaySource{
		colorPath: filepath.Clean(colorPath),
		depthPath: filepath.Clean(depthPath),
		logger:    logger,
	}
	if err := rs.load(); err != nil {
		return nil, err
	}
	if !watch {
		return rs, nil
	}
	if err := rs.startWatching(); err != nil {
		return nil, err
	}
	return rs, nil
}

func loadPair(colorPath, depthPath string) (*rimage.DepthMap, *rimage.Image, error) {
	img, err := rimage.NewImageFromFile(colorPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot read color image %q", colorPath)
	}
	dm, err := rimage.NewDepthMapFromFile(depthPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot read depth image %q", depthPath)
	}
	if err := checkPair(dm, img); err != nil {
		return nil, nil, errors.Wrapf(err, "replay images %q and %q", colorPath, depthPath)
	}
	return dm, img, nil
}

func (rs *ReplaySource) load() error {
	dm, img, err := loadPair(rs.colorPath, rs.depthPath)
	if err != nil {
		return err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.dm = dm
	rs.img = img
	rs.generation++
	return nil
}

func (rs *ReplaySource) startWatching() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot watch replay images")
	}
	// Editors often replace files rather than write them, so watch the directories.
	dirs := map[string]struct{}{
		filepath.Dir(rs.colorPath): {},
		filepath.Dir(rs.depthPath): {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return multierr.Combine(errors.Wrapf(err, "cannot watch %q", dir), watcher.Close())
		}
	}
	rs.watcher = watcher

	ctx, cancel := context.WithCancel(context.Background())
	rs.cancel = cancel
	rs.activeWorkers.Add(1)
	go func() {
		defer rs.activeWorkers.Done()
		rs.watch(ctx)
	}()
	return nil
}

func (rs *ReplaySource) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-rs.watcher.Errors:
			if !ok {
				return
			}
			rs.logger.Warnw("replay watcher error", "error", err)
		case ev, ok := <-rs.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(ev.Name)
			if name != rs.colorPath && name != rs.depthPath {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := rs.load(); err != nil {
				// a writer may still be mid-way through the file; keep the last good pair
				rs.logger.Debugw("could not reload replay images", "error", err)
				continue
			}
			rs.logger.Infow("reloaded replay images", "file", name)
		}
	}
}

// Generation counts how many times the image pair has been loaded.
func (rs *ReplaySource) Generation() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.generation
}

// NextFrame returns copies of the loaded pair. Replayed images have no infrared or raw depth
// stream, so the mode is ignored.
func (rs *ReplaySource) NextFrame(ctx context.Context, mode Mode) (*rimage.DepthMap, *rimage.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if !mode.IsDefault() && !rs.warnedModes {
		rs.warnedModes = true
		rs.logger.Debugw("replay source ignores stream modes", "depth", mode.Depth, "color", mode.Color)
	}
	return rs.dm.Clone(), rs.img.Clone(), nil
}

// Close stops watching the files.
func (rs *ReplaySource) Close(ctx context.Context) error {
	if rs.watcher == nil {
		return nil
	}
	rs.cancel()
	err := rs.watcher.Close()
	rs.activeWorkers.Wait()
	rs.watcher = nil
	return err
}
