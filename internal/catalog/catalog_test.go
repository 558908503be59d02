package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultCatalogHasAllCategories(t *testing.T) {
	c := Default()

	entries := c.Entries()
	require.Len(t, entries, Size)
	for i, entry := range entries {
		assert.Equal(t, Category(i+1), entry.ID)
		assert.True(t, entry.BasePrice.IsPositive(), entry.Name)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	tests := []struct {
		id      Category
		name    string
		display string
		price   string
	}{
		{1, "ABHISHEKAM", "Abhishekam", "16"},
		{4, "VISHNUSAHASRANAMAM_WITH_POST", "Vishnusahasranamam With Post", "60"},
		{7, "ANNADANAM", "Annadanam", "1116"},
		{8, "RUDRABHISHEKAM", "Rudrabhishekam", "2000"},
		{15, "SASWATHA_ANNADANAM_ALLFESTIVALS", "Saswatha Annadanam Allfestivals", "10116"},
		{19, "DHUNIPUJA_WITHOUT_PUJA_MATERIAL", "Dhunipuja Without Puja Material", "35"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := c.Lookup(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.name, entry.Name)
			assert.Equal(t, tt.display, entry.DisplayName)
			assert.True(t, decimal.RequireFromString(tt.price).Equal(entry.BasePrice))

			byName, err := c.LookupName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.id, byName.ID)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	c := Default()

	_, err := c.Lookup(0)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = c.Lookup(20)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = c.LookupName("KUMKUMARCHANA")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestEntriesReturnsCopy(t *testing.T) {
	c := Default()
	entries := c.Entries()
	entries[0].Name = "CHANGED"

	entry, err := c.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "ABHISHEKAM", entry.Name)
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	valid := Default().Entries()

	t.Run("missing id", func(t *testing.T) {
		_, err := New("test", valid[1:])
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})

	t.Run("zero price", func(t *testing.T) {
		entries := append([]Entry(nil), valid...)
		entries[2].BasePrice = decimal.Zero
		_, err := New("test", entries)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})

	t.Run("duplicate name", func(t *testing.T) {
		entries := append([]Entry(nil), valid...)
		entries[1].Name = entries[0].Name
		_, err := New("test", entries)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})

	t.Run("out of range", func(t *testing.T) {
		entries := append([]Entry(nil), valid...)
		entries = append(entries, Entry{ID: 20, Name: "EXTRA", BasePrice: decimal.NewFromInt(1)})
		_, err := New("test", entries)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	raw, err := os.ReadFile("catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2024.1", c.Version())
	assert.Len(t, c.Entries(), Size)
}

func TestLoadRejectsBadPrice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := []byte("catalog:\n  version: broken\n  services:\n    - id: 1\n      name: ABHISHEKAM\n      price: sixteen\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Sai Sathya Vratham", DisplayName("SAI_SATHYA_VRATHAM"))
	assert.Equal(t, "Upi", DisplayName("UPI"))
}

func TestDisplayNameConcurrent(t *testing.T) {
	names := map[string]string{
		"SASWATHA_POOJA_ALLFESTIVALS": "Saswatha Pooja Allfestivals",
		"CASH":                        "Cash",
		"UPI":                         "Upi",
		"RUDRABHISHEKAM":              "Rudrabhishekam",
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				for name, want := range names {
					if got := DisplayName(name); got != want {
						errs <- name + " rendered as " + got
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestWatchKeepsRunningCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	raw, err := os.ReadFile("catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	Watch(path, c, zap.New(core))

	updated := strings.Replace(string(raw), "2024.1", "2024.2", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("catalog file changed, restart to apply").Len() > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "2024.1", c.Version())
}
