// Package ingestion downloads the zipped dataset and extracts it.
package ingestion

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

const defaultExtractConcurrency = 4

// DataIngestion downloads and extracts the dataset described by its config.
type DataIngestion struct {
	cfg     config.DataIngestionConfig
	fetcher Fetcher
	logger  *slog.Logger
}

// New creates a DataIngestion fetching the source through fetcher.
func New(cfg config.DataIngestionConfig, fetcher Fetcher, logger *slog.Logger) *DataIngestion {
	return &DataIngestion{cfg: cfg, fetcher: fetcher, logger: logger}
}

// DownloadFile fetches the source once. When the local file already exists
// nothing is fetched and its size is logged.
func (d *DataIngestion) DownloadFile(ctx context.Context) error {
	info, err := os.Stat(d.cfg.LocalDataFile)
	if err == nil {
		d.logger.Info("file already exists", "path", d.cfg.LocalDataFile, "size", sizeKB(info.Size()))

		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return model.Wrapf(model.ErrIO, err, "unable to stat %s", d.cfg.LocalDataFile)
	}

	body, err := d.fetcher.Fetch(ctx, d.cfg.SourceURL)
	if err != nil {
		d.logger.Error("download failed", "url", d.cfg.SourceURL, "error", err)

		return model.Wrap(model.ErrIO, err, "download")
	}
	defer body.Close()

	written, err := writeAtomic(d.cfg.LocalDataFile, body)
	if err != nil {
		d.logger.Error("download failed", "url", d.cfg.SourceURL, "error", err)

		return model.Wrap(model.ErrIO, err, "download")
	}

	d.logger.Info("downloaded successfully", "url", d.cfg.SourceURL, "path", d.cfg.LocalDataFile, "size", sizeKB(written))

	return nil
}

// writeAtomic writes to a temporary file next to path and renames it, so an
// interrupted download never leaves a partial archive behind.
func writeAtomic(path string, src io.Reader) (int64, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to create directory for %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return 0, errors.Wrapf(err, "unable to create temporary file for %s", path)
	}

	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()

		return 0, errors.Wrapf(err, "unable to write %s", path)
	}

	err = tmp.Close()
	if err != nil {
		return 0, errors.Wrapf(err, "unable to close %s", tmp.Name())
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to move download to %s", path)
	}

	return written, nil
}

// ExtractZipFile extracts the whole archive into UnzipDir. A missing archive
// is reported as an ErrIO that also matches fs.ErrNotExist.
func (d *DataIngestion) ExtractZipFile(ctx context.Context) error {
	unzipPath := d.cfg.UnzipDir

	err := os.MkdirAll(unzipPath, 0o755)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to create %s", unzipPath)
	}

	_, err = os.Stat(d.cfg.LocalDataFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Wrapf(model.ErrIO, err, "zip file not found at %s, download it first", d.cfg.LocalDataFile)
		}

		return model.Wrapf(model.ErrIO, err, "unable to stat %s", d.cfg.LocalDataFile)
	}

	archive, err := zip.OpenReader(d.cfg.LocalDataFile)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to open zip file %s", d.cfg.LocalDataFile)
	}
	defer archive.Close()

	err = extractAll(ctx, &archive.Reader, unzipPath, d.extractConcurrency())
	if err != nil {
		d.logger.Error("extraction failed", "path", d.cfg.LocalDataFile, "error", err)

		return model.Wrap(model.ErrIO, err, "extract")
	}

	d.logger.Info("data extracted successfully", "path", unzipPath, "files", len(archive.File))

	return nil
}

func (d *DataIngestion) extractConcurrency() int {
	if d.cfg.ExtractConcurrency > 0 {
		return d.cfg.ExtractConcurrency
	}

	return defaultExtractConcurrency
}

func extractAll(ctx context.Context, archive *zip.Reader, dest string, concurrent int) error {
	root, err := filepath.Abs(dest)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %s", dest)
	}

	targets := make([]string, len(archive.File))
	// last entry index per target: a repeated name is written once, by its last entry
	last := make(map[string]int, len(archive.File))

	// Directories are created up front, workers only write files.
	for i, file := range archive.File {
		target, err := safeJoin(root, file.Name)
		if err != nil {
			return err
		}

		targets[i] = target
		last[target] = i

		dir := filepath.Dir(target)
		if file.FileInfo().IsDir() {
			dir = target
		}

		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return errors.Wrapf(err, "unable to create %s", dir)
		}
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrent)

	for i, file := range archive.File {
		target := targets[i]
		if file.FileInfo().IsDir() || last[target] != i {
			continue
		}

		errGrp.Go(func() error {
			select {
			case <-dCtx.Done():
				return dCtx.Err()
			default:
			}

			return extractFile(file, target)
		})
	}

	return errGrp.Wait()
}

func extractFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return errors.Wrapf(err, "unable to open %s in archive", file.Name)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", target)
	}

	_, err = io.Copy(dst, src)
	if err != nil {
		dst.Close()

		return errors.Wrapf(err, "unable to extract %s", file.Name)
	}

	return dst.Close()
}

// safeJoin rejects entries escaping root, e.g. "../../etc/passwd".
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, name)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", errors.Errorf("illegal file path in archive: %s", name)
	}

	return target, nil
}

func sizeKB(size int64) string {
	return fmt.Sprintf("~ %d KB", int64(math.Round(float64(size)/1024)))
}
