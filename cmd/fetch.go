package main

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL...",
	Short: "Download extracts into the data directory",
	Long:  "Downloads table extracts from data.census.gov or the Census API into the data directory. Name each file <prefix>_<year>.<ext> so loads can find it; --as renames a single download.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			cfg.Ingest.DataDir = dir
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		as, _ := cmd.Flags().GetString("as")
		if as != "" && len(args) > 1 {
			return eris.New("fetch: --as needs exactly one URL")
		}
		extract, _ := cmd.Flags().GetBool("extract")
		force, _ := cmd.Flags().GetBool("force")

		if err := os.MkdirAll(cfg.Ingest.DataDir, 0o755); err != nil {
			return eris.Wrap(err, "fetch: create data dir")
		}

		var f fetcher.Fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})

		for _, raw := range args {
			name := as
			if name == "" {
				var err error
				if name, err = fileNameFromURL(raw); err != nil {
					return err
				}
			}
			dest := filepath.Join(cfg.Ingest.DataDir, name)

			n, changed, err := download(ctx, f, raw, dest, force)
			if err != nil {
				return eris.Wrapf(err, "fetch: %s", raw)
			}
			if !changed {
				zap.L().Info("unchanged, skipping", zap.String("url", raw), zap.String("file", dest))
				continue
			}
			zap.L().Info("downloaded", zap.String("url", raw), zap.String("file", dest), zap.Int64("bytes", n))

			if extract && strings.EqualFold(filepath.Ext(dest), ".zip") {
				files, err := fetcher.ExtractZIP(dest, cfg.Ingest.DataDir)
				if err != nil {
					return eris.Wrapf(err, "fetch: extract %s", dest)
				}
				zap.L().Info("extracted", zap.String("file", dest), zap.Int("entries", len(files)))
			}
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("data-dir", "", "destination directory (default from config)")
	fetchCmd.Flags().String("as", "", "file name for a single download, e.g. education_2023.zip")
	fetchCmd.Flags().Bool("extract", false, "unpack downloaded zip archives")
	fetchCmd.Flags().Bool("force", false, "download even when the server reports the file unchanged")
	rootCmd.AddCommand(fetchCmd)
}

// fileNameFromURL returns the last path segment of rawURL.
func fileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: parse url %q", rawURL)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", eris.Errorf("fetch: cannot name a file from %q, use --as", rawURL)
	}
	return name, nil
}

// download writes rawURL to dest unless the server's ETag matches the one
// saved next to dest by a previous run.
func download(ctx context.Context, f fetcher.Fetcher, rawURL, dest string, force bool) (int64, bool, error) {
	etagPath := dest + ".etag"
	var etag string
	if !force {
		if _, err := os.Stat(dest); err == nil {
			if b, err := os.ReadFile(etagPath); err == nil {
				etag = strings.TrimSpace(string(b))
			}
		}
	}

	body, newTag, changed, err := f.DownloadIfChanged(ctx, rawURL, etag)
	if err != nil {
		return 0, false, err
	}
	if !changed {
		return 0, false, nil
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return 0, false, eris.Wrap(err, "create file")
	}
	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, false, eris.Wrap(err, "write file")
	}

	if newTag != "" {
		if err := os.WriteFile(etagPath, []byte(newTag+"\n"), 0o644); err != nil {
			return n, true, eris.Wrap(err, "write etag")
		}
	} else {
		_ = os.Remove(etagPath)
	}
	return n, true, nil
}
