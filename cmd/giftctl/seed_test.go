package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gifts.yaml")
	content := `
gifts:
  - name: Jogo de panelas
    description: Panelas antiaderentes
    target_amount: "500.00"
  - name: Lua de mel
    target_amount: "3000"
    active: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	seeds, err := loadSeedFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seeds) != 2 {
		t.Fatalf("seeds = %+v", seeds)
	}
	if seeds[0].TargetAmount != "500.00" || seeds[0].Active != nil {
		t.Errorf("first seed = %+v", seeds[0])
	}
	if seeds[1].Active == nil || *seeds[1].Active {
		t.Errorf("second seed should be inactive: %+v", seeds[1])
	}
}

func TestLoadSeedFileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("gifts: []\n"), 0o600)
	broken := filepath.Join(dir, "broken.yaml")
	os.WriteFile(broken, []byte("gifts: [\n"), 0o600)

	for _, path := range []string{empty, broken, filepath.Join(dir, "missing.yaml")} {
		if _, err := loadSeedFile(path); err == nil {
			t.Errorf("loadSeedFile(%s) should fail", filepath.Base(path))
		}
	}
}
