package scheduler

import (
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jra3/hecras-orchestrator/internal/herr"
	"github.com/jra3/hecras-orchestrator/internal/project"
)

// sequentialTestSubfolder names the isolated subfolder used by
// ModeSequentialTest; reproductions always land here, never in the
// source folder (§4.3 "never touching the source").
const sequentialTestSubfolder = "[Test]"

// isolate mirrors whatever the mode requires and returns the
// directory the worker should run in.
func (s *Scheduler) isolate(p *project.Project, mode Mode, planNumber string, opts Options) (string, error) {
	switch mode {
	case ModeSingle:
		if opts.Destination == "" {
			return p.Folder, nil
		}
		if err := mirrorTree(p.Folder, opts.Destination, opts.Overwrite); err != nil {
			return "", err
		}
		return opts.Destination, nil

	case ModeSequentialTest:
		dest := filepath.Join(p.Folder, sequentialTestSubfolder)
		if err := mirrorTree(p.Folder, dest, true); err != nil {
			return "", err
		}
		return dest, nil

	case ModeLocalParallel, ModeRemoteDistributed:
		root := opts.Destination
		if root == "" {
			root = filepath.Join(p.Folder, ".runs")
		}
		dest := filepath.Join(root, "plan-"+planNumber)
		if err := mirrorTree(p.Folder, dest, true); err != nil {
			return "", err
		}
		return dest, nil

	default:
		return "", herr.New(herr.FormatViolation, "unknown execution mode")
	}
}

// preprocessorCachePattern matches the geometry preprocessor cache
// files the simulator regenerates from scratch when clear_preprocessor
// is set: .cNN (geometry preprocessor), .xNN (unsteady preprocessor),
// .bNN (sediment preprocessor).
var preprocessorCachePattern = regexp.MustCompile(`\.[cxb]\d{2}$`)

// clearPreprocessorFiles deletes cached preprocessor output in dir so
// the simulator fully recomputes geometry on the next run (§4.3
// "Pre-flight").
func clearPreprocessorFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return herr.Wrap(herr.IoError, "failed to list isolation directory", err).WithPath(dir)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if preprocessorCachePattern.MatchString(entry.Name()) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return herr.Wrap(herr.IoError, "failed to remove preprocessor cache file", err).WithPath(entry.Name())
			}
		}
	}
	return nil
}

// mirrorTree copies every regular file under src into dst, creating
// dst if needed. If dst already exists and overwrite is false, it is
// left untouched (mirrors §4.3 Single mode's optional destination
// reuse across repeated runs).
func mirrorTree(src, dst string, overwrite bool) error {
	if _, err := os.Stat(dst); err == nil && !overwrite {
		return nil
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return herr.Wrap(herr.IoError, "failed to create isolation directory", err).WithPath(dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return herr.Wrap(herr.IoError, "failed to list source project folder", err).WithPath(src)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return herr.Wrap(herr.IoError, "failed to open source file", err).WithPath(src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return herr.Wrap(herr.IoError, "failed to create destination file", err).WithPath(dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return herr.Wrap(herr.IoError, "failed to copy file contents", err).WithPath(src)
	}
	return nil
}
