package configs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.toml")

	type TestStruct struct {
		Name  string   `toml:"name"`
		Hosts []string `toml:"hosts"`
	}

	originalData := TestStruct{
		Name:  "flint",
		Hosts: []string{"a", "b"},
	}

	if err := SaveTOML(testFile, []byte("# header\n"), originalData); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	raw, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("# header\n")) {
		t.Errorf("Expected header at the top of the file, got %q", raw)
	}

	loadedData := TestStruct{}
	if _, err := LoadTOML(testFile, &loadedData); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loadedData.Name != originalData.Name {
		t.Errorf("Expected Name %q, got %q", originalData.Name, loadedData.Name)
	}
	if len(loadedData.Hosts) != 2 || loadedData.Hosts[1] != "b" {
		t.Errorf("Expected Hosts %v, got %v", originalData.Hosts, loadedData.Hosts)
	}
}

func TestSaveTOMLRefusesToOverwrite(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.toml")
	if err := os.WriteFile(testFile, []byte("name = \"old\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SaveTOML(testFile, nil, struct{ Name string }{"new"}); err == nil {
		t.Fatal("Expected error when the file exists, got nil")
	}

	raw, _ := os.ReadFile(testFile)
	if string(raw) != "name = \"old\"\n" {
		t.Errorf("Existing file was modified: %q", raw)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "nonexistent.toml")

	data := struct{ Name string }{}
	if _, err := LoadTOML(testFile, &data); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestLoadTOMLReportsUndecodedKeys(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.toml")
	if err := os.WriteFile(testFile, []byte("name = \"x\"\nunknown = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	data := struct {
		Name string `toml:"name"`
	}{}
	md, err := LoadTOML(testFile, &data)
	if err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	undecoded := md.Undecoded()
	if len(undecoded) != 1 || undecoded[0].String() != "unknown" {
		t.Errorf("Expected [unknown] to be undecoded, got %v", undecoded)
	}
}

func TestSaveTOMLCreatesDirectory(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "subdir", "test.toml")

	if err := SaveTOML(testFile, nil, struct{ Name string }{"Test"}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Fatal("File was not created")
	}
}
