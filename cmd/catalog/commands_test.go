package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront/internal/adapters/storage/kv"
	domain "storefront/internal/domain/shelf"
)

// testEnv points the CLI at a temp database and file shelf storage.
func testEnv(t *testing.T) (getenv func(string) string, dir string) {
	t.Helper()
	dir = t.TempDir()
	vars := map[string]string{
		"STOREFRONT_DB":          filepath.Join(dir, "storefront.db"),
		"STOREFRONT_STORAGE":     "file",
		"STOREFRONT_STORAGE_DIR": filepath.Join(dir, "shelves"),
	}
	return func(k string) string { return vars[k] }, dir
}

func runCLI(t *testing.T, getenv func(string) string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(getenv)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const productsCSV = `id,name,price,category,attr:Material
tote,Canvas Tote,25.00,bags,Canvas
mug,Enamel Mug,18.00,kitchen,
`

func TestImportCommand_DryRunThenImport(t *testing.T) {
	getenv, dir := testEnv(t)
	csvPath := writeFile(t, dir, "products.csv", productsCSV)

	out, err := runCLI(t, getenv, "import", csvPath, "--dry-run")
	if err != nil {
		t.Fatalf("dry run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "dry run") || !strings.Contains(out, "created: 2") {
		t.Errorf("dry run output = %q", out)
	}

	out, err = runCLI(t, getenv, "import", csvPath)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "created: 2") {
		t.Errorf("import output = %q", out)
	}

	// Second run skips existing products without --update.
	out, err = runCLI(t, getenv, "import", csvPath)
	if err != nil {
		t.Fatalf("reimport: %v\n%s", err, out)
	}
	if !strings.Contains(out, "skipped: 2") {
		t.Errorf("reimport output = %q", out)
	}
}

func TestImportCommand_RowErrorsFail(t *testing.T) {
	getenv, dir := testEnv(t)
	csvPath := writeFile(t, dir, "bad.csv", "id,name,price\ntote,Canvas Tote,lots\n")

	out, err := runCLI(t, getenv, "import", csvPath)
	if err == nil {
		t.Fatal("expected error for invalid row")
	}
	if !strings.Contains(out, "row 2:") {
		t.Errorf("output = %q, want row error", out)
	}
}

func TestSeedCommand_IfEmpty(t *testing.T) {
	getenv, dir := testEnv(t)
	seed := writeFile(t, dir, "seed.yaml", `products:
  - id: tote
    name: Canvas Tote
    price: "25.00"
    category: bags
`)

	out, err := runCLI(t, getenv, "seed", seed, "--if-empty")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "seeded 1") {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, getenv, "seed", seed, "--if-empty")
	if err != nil {
		t.Fatalf("reseed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "skipped") {
		t.Errorf("output = %q, want skipped", out)
	}
}

func TestShelfCommands_ShowAndClear(t *testing.T) {
	getenv, dir := testEnv(t)
	store, err := kv.NewFileStore(filepath.Join(dir, "shelves"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	visitor := "visitor-1"
	if err := store.Put(ctx, kv.Key(visitor, string(domain.Favorites)), []byte(`["tote","mug"]`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, kv.Key(visitor, string(domain.Compare)), []byte(`["tote"]`)); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, getenv, "shelf", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out) != visitor {
		t.Errorf("list output = %q", out)
	}

	out, err = runCLI(t, getenv, "shelf", "show", visitor)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "tote, mug") {
		t.Errorf("show output = %q", out)
	}

	if _, err := runCLI(t, getenv, "shelf", "clear", visitor, "compare"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	raw, _, err := store.Get(ctx, kv.Key(visitor, string(domain.Compare)))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "[]" {
		t.Errorf("compare after clear = %s, want []", raw)
	}
	raw, _, _ = store.Get(ctx, kv.Key(visitor, string(domain.Favorites)))
	if string(raw) != `["tote","mug"]` {
		t.Errorf("favorites changed: %s", raw)
	}
}

func TestShelfClear_UnknownList(t *testing.T) {
	getenv, _ := testEnv(t)
	if _, err := runCLI(t, getenv, "shelf", "clear", "visitor-1", "wishlist"); err == nil {
		t.Error("expected error for unknown list")
	}
}

func TestShelfCommands_MemoryBackendRejected(t *testing.T) {
	getenv := func(k string) string {
		if k == "STOREFRONT_STORAGE" {
			return "memory"
		}
		return ""
	}
	if _, err := runCLI(t, getenv, "shelf", "list"); err == nil {
		t.Error("expected error for memory backend")
	}
}
