package storage

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/spf13/afero"
)

// RunInfo is one entry of a runs directory listing.
type RunInfo struct {
	Name        string
	Path        string
	ModTime     time.Time
	MetricsSize int64
	Status      string
	Step        int64
	Latest      bool
}

// FindLatestRun returns the path of the newest run under dir. The latest-run
// symlink wins when the filesystem can read it and it points at a directory;
// otherwise the most recently modified run directory is used.
func FindLatestRun(fsys afero.Fs, dir string) (string, error) {
	if target, ok := readLatestLink(fsys, dir); ok {
		return target, nil
	}

	runs, err := runDirs(fsys, dir)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.NewRunNotFound(dir)
	}
	return filepath.Join(dir, runs[0].Name()), nil
}

// readLatestLink resolves dir/latest-run. Relative targets are joined to dir.
func readLatestLink(fsys afero.Fs, dir string) (string, bool) {
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return "", false
	}
	target, err := reader.ReadlinkIfPossible(filepath.Join(dir, LatestLink))
	if err != nil || target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	info, err := fsys.Stat(target)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return target, true
}

// runDirs lists run directories under dir, newest first.
func runDirs(fsys afero.Fs, dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewRunNotFound(dir)
		}
		return nil, errors.WrapWithCode(err, errors.ErrStorage,
			"Cannot list runs in "+dir,
			"Check directory permissions")
	}

	var runs []os.FileInfo
	for _, e := range entries {
		if !e.IsDir() || e.Name() == LatestLink || e.Name()[0] == '.' {
			continue
		}
		runs = append(runs, e)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].ModTime().Equal(runs[j].ModTime()) {
			return runs[i].Name() < runs[j].Name()
		}
		return runs[i].ModTime().After(runs[j].ModTime())
	})
	return runs, nil
}

// ListRuns describes every run under dir, newest first. The run FindLatestRun
// would pick is flagged Latest. Unreadable summaries show as UNKNOWN.
func ListRuns(fsys afero.Fs, dir string) ([]RunInfo, error) {
	runs, err := runDirs(fsys, dir)
	if err != nil {
		return nil, err
	}

	latest, _ := FindLatestRun(fsys, dir)

	infos := make([]RunInfo, 0, len(runs))
	for _, r := range runs {
		path := filepath.Join(dir, r.Name())
		info := RunInfo{
			Name:    r.Name(),
			Path:    path,
			ModTime: r.ModTime(),
			Status:  StatusUnknown,
			Latest:  filepath.Clean(path) == filepath.Clean(latest),
		}
		if st, err := fsys.Stat(filepath.Join(path, MetricsFile)); err == nil {
			info.MetricsSize = st.Size()
		}
		if summary, err := ReadSummary(fsys, path); err == nil {
			info.Status = summary.Status
			info.Step = summary.Step
		}
		infos = append(infos, info)
	}
	return infos, nil
}
