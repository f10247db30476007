package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-inventory/model"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			writeGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

func writeGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// InventoryFixture describes accounts and rows to seed into a FakeBackend.
// Rows reference their owner by email.
type InventoryFixture struct {
	Users []struct {
		Email     string         `json:"email"`
		Password  string         `json:"password"`
		Confirmed bool           `json:"confirmed"`
		Metadata  map[string]any `json:"metadata"`
	} `json:"users"`
	Categories []struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Owner string `json:"owner"`
	} `json:"categories"`
	Products []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		CategoryID  *int64  `json:"category_id"`
		Stock       int     `json:"stock"`
		Price       float64 `json:"price"`
		Description *string `json:"description"`
		Owner       string  `json:"owner"`
		CreatedAt   string  `json:"created_at"`
	} `json:"products"`
}

// SeedInventory loads the fixture at path into fb and returns the seeded
// principals keyed by email.
func SeedInventory(t *testing.T, fb *FakeBackend, path string) map[string]model.Principal {
	t.Helper()

	var fx InventoryFixture
	LoadFixtureJSON(t, path, &fx)

	users := make(map[string]model.Principal, len(fx.Users))
	for _, u := range fx.Users {
		users[u.Email] = fb.AddUser(u.Email, u.Password, u.Confirmed, u.Metadata)
	}

	owner := func(email string) string {
		p, ok := users[email]
		if !ok {
			t.Fatalf("fixture %s references unknown owner %q", path, email)
		}
		return p.ID
	}

	for _, c := range fx.Categories {
		fb.SeedCategory(model.Category{ID: c.ID, Name: c.Name, UserID: owner(c.Owner)})
	}
	for _, p := range fx.Products {
		row := model.Product{
			ID:          p.ID,
			Name:        p.Name,
			CategoryID:  p.CategoryID,
			Stock:       p.Stock,
			Price:       p.Price,
			Description: p.Description,
			UserID:      owner(p.Owner),
		}
		if p.CreatedAt != "" {
			ts, err := parseFixtureTime(p.CreatedAt)
			if err != nil {
				t.Fatalf("fixture %s: bad created_at %q: %v", path, p.CreatedAt, err)
			}
			row.CreatedAt = ts
		}
		fb.SeedProduct(row)
	}
	return users
}
