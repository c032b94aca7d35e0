package satellite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"
)

// DownloadConfig describes an OAuth2 client-credentials-protected vendor
// endpoint serving AOD raster products.
type DownloadConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Download fetches each product URL into destDir, skipping files that
// already exist. A failed product is logged and skipped; the call only
// errors when every product failed.
func Download(ctx context.Context, cfg DownloadConfig, productURLs []string, destDir string, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "satellite").Logger()
	if len(productURLs) == 0 {
		return nil
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create raster directory: %w", err)
	}

	oauth := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	client := oauth.Client(ctx)

	failed := 0
	for _, productURL := range productURLs {
		name, err := productFileName(productURL)
		if err != nil {
			failed++
			logger.Warn().Err(err).Str("url", productURL).Msg("skipping product")
			continue
		}
		dest := filepath.Join(destDir, name)
		if _, err := os.Stat(dest); err == nil {
			logger.Info().Str("file", name).Msg("raster already downloaded")
			continue
		}

		if err := fetchProduct(ctx, client, productURL, dest); err != nil {
			failed++
			logger.Warn().Err(err).Str("file", name).Msg("failed to download raster")
			continue
		}
		logger.Info().Str("file", name).Msg("downloaded raster")
	}

	if failed == len(productURLs) {
		return fmt.Errorf("all %d raster downloads failed", failed)
	}
	return nil
}

func productFileName(productURL string) (string, error) {
	u, err := url.Parse(productURL)
	if err != nil {
		return "", fmt.Errorf("invalid product URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("product URL %s has no file name", productURL)
	}
	return name, nil
}

func fetchProduct(ctx context.Context, client *http.Client, productURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vendor returned status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
