package dependencies

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
)

// PackageClient fetches symbol packages. *bcapi.Client satisfies it.
type PackageClient interface {
	DownloadPackage(ctx context.Context, ref bcapi.PackageRef) ([]byte, error)
}

// goos selects the permission fixup; tests override it.
var goos = runtime.GOOS

const packageMode = 0o755

// Downloader saves dependency packages into a directory.
type Downloader struct {
	client PackageClient
	logger logging.Logger
}

// NewDownloader returns a Downloader. A nil logger discards output.
func NewDownloader(client PackageClient, logger logging.Logger) *Downloader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Downloader{client: client, logger: logger}
}

// Download fetches every dependency into dir as <name>.app, creating dir
// when needed. Outside Windows the directory and its files are made
// executable so the AL compiler container can read them. It returns the
// sorted directory listing. The first failed download aborts the run.
func (d *Downloader) Download(ctx context.Context, deps []Dependency, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, packageMode); err != nil {
		return nil, fmt.Errorf(messages.DepsCreateDirFmt, dir, err)
	}

	for _, dep := range deps {
		d.logger.Info(messages.DepsDownloading, "id", dep.ID, "name", dep.Name, "version", dep.Version)
		data, err := d.client.DownloadPackage(ctx, dep.Ref())
		if err != nil {
			return nil, fmt.Errorf(messages.DepsDownloadFmt, dep.ID, dep.Name, err)
		}
		target := filepath.Join(dir, dep.FileName())
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return nil, fmt.Errorf(messages.DepsWriteFmt, target, err)
		}
		d.logger.Debug(messages.DepsSaved, "path", target, "bytes", len(data))
	}
	d.logger.Info(messages.DepsDownloadComplete, "count", len(deps))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf(messages.DepsListDirFmt, dir, err)
	}
	if goos != "windows" {
		d.logger.Info(messages.DepsChmod, "dir", dir)
		if err := os.Chmod(dir, packageMode); err != nil {
			return nil, fmt.Errorf(messages.DepsChmodFmt, dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if err := os.Chmod(path, packageMode); err != nil {
				return nil, fmt.Errorf(messages.DepsChmodFmt, path, err)
			}
		}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
