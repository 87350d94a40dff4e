package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

type fileService interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, file *File, w io.Writer) error
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader wraps Service to pull report files from a specific folder.
type Downloader struct {
	service fileService
}

// NewDownloader creates a new Downloader.
func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// Folder is a listed Drive folder whose report files are addressed by name.
// Files are served as stored. Google Sheets are exported as CSV and served
// under their name plus ".csv".
type Folder struct {
	service fileService
	names   []string
	files   map[string]*File
}

// OpenFolder lists the folder and keeps the files that look like reports.
// A location containing a slash is a folder path below My Drive, anything
// else is a folder id.
func (d *Downloader) OpenFolder(ctx context.Context, location string) (*Folder, error) {
	folderID := location
	if strings.Contains(location, "/") {
		id, err := d.service.FindFolderByPath(ctx, strings.Trim(location, "/"))
		if err != nil {
			return nil, err
		}
		folderID = id
	}

	files, err := d.service.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	folder := &Folder{service: d.service, files: make(map[string]*File)}
	snapshots := make(map[string]bool)
	for _, f := range files {
		name, ok := reportName(f)
		if !ok {
			continue
		}
		// jan.csv and jan.xlsx would both become snapshot "jan".
		snapshot := pipeline.SnapshotName(name)
		if snapshots[snapshot] {
			log.Warn().Str("file", f.Name).Str("snapshot", snapshot).Msg("skipping drive file with duplicate report name")
			continue
		}
		snapshots[snapshot] = true
		folder.files[name] = f
		folder.names = append(folder.names, name)
	}
	return folder, nil
}

// reportName returns the name a report is served under, or false for files
// the report readers cannot parse.
func reportName(f *File) (string, bool) {
	if f.IsSpreadsheet() {
		return f.Name + ".csv", true
	}
	if _, err := fba.ReaderFor(f.Name); err != nil {
		return "", false
	}
	return f.Name, true
}

// Names returns report names in listing order.
func (f *Folder) Names() []string {
	return f.names
}

// Fetch downloads one report. The name's extension tells the report readers
// how to parse the bytes.
func (f *Folder) Fetch(ctx context.Context, name string) ([]byte, error) {
	file, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("drive file not found: %s", name)
	}

	var raw bytes.Buffer
	if err := f.service.DownloadFile(ctx, file, &raw); err != nil {
		return nil, err
	}
	return raw.Bytes(), nil
}

// DownloadFolder stages every report of the folder in DownloadDir under its
// report name and returns the local paths.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	folder, err := d.OpenFolder(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, name := range folder.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := folder.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}

		localPath := filepath.Join(opts.DownloadDir, name)
		if err := os.WriteFile(localPath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write local file %s: %w", localPath, err)
		}
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}

// Reports lists the folder and returns its report names with a fetcher.
func (d *Downloader) Reports(ctx context.Context, folderID string) ([]string, pipeline.FetchFunc, error) {
	folder, err := d.OpenFolder(ctx, folderID)
	if err != nil {
		return nil, nil, err
	}
	return folder.Names(), folder.Fetch, nil
}
