package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type fileEntry struct {
	ID          int    `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
	Price       string `mapstructure:"price"`
}

type fileCatalog struct {
	Version  string      `mapstructure:"version"`
	Services []fileEntry `mapstructure:"services"`
}

// Load reads the catalog from path, or the embedded default when path is empty.
// The catalog is loaded once; there is no reload.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	path = strings.TrimSpace(path)
	if path == "" {
		if err := v.ReadConfig(bytes.NewReader(defaultCatalog)); err != nil {
			return nil, fmt.Errorf("read embedded catalog: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}

	var raw fileCatalog
	if err := v.UnmarshalKey("catalog", &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return fromFile(raw)
}

// Watch reports edits to the catalog file at path. The running catalog is
// never swapped; an edit that validates only logs that a restart is needed.
func Watch(path string, current *Catalog, log *zap.Logger) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		log.Warn("catalog watch disabled", zap.String("path", path), zap.Error(err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var raw fileCatalog
		if err := v.UnmarshalKey("catalog", &raw); err != nil {
			log.Error("catalog file changed but cannot be decoded", zap.String("path", e.Name), zap.Error(err))
			return
		}
		next, err := fromFile(raw)
		if err != nil {
			log.Error("catalog file changed but is invalid", zap.String("path", e.Name), zap.Error(err))
			return
		}
		log.Warn("catalog file changed, restart to apply",
			zap.String("path", e.Name),
			zap.String("running_version", current.Version()),
			zap.String("file_version", next.Version()),
		)
	})
	v.WatchConfig()
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

func fromFile(raw fileCatalog) (*Catalog, error) {
	entries := make([]Entry, 0, len(raw.Services))
	for _, svc := range raw.Services {
		price, err := decimal.NewFromString(strings.TrimSpace(svc.Price))
		if err != nil {
			return nil, fmt.Errorf("%w: category %d price %q: %v", ErrInvalidCatalog, svc.ID, svc.Price, err)
		}
		entries = append(entries, Entry{
			ID:          Category(svc.ID),
			Name:        svc.Name,
			DisplayName: svc.DisplayName,
			BasePrice:   price,
		})
	}
	return New(raw.Version, entries)
}
