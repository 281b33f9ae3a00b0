package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCorpus(t, `{
		"documents": [
			{"id": "101", "title": "Billing", "full_content": "Billing works like this.", "last_updated": "2025-03-01", "url": "https://docs.example.com/101"},
			{"id": 202, "title": "Metering", "full_content": "Metering details.", "last_updated": "2025-03-02", "url": "https://docs.example.com/202"}
		]
	}`)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// numeric and string ids both normalize to strings
	if string(records[0].Id) != "101" || string(records[1].Id) != "202" {
		t.Errorf("Id normalization failed: %q, %q", records[0].Id, records[1].Id)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeCorpus(t, `{"documents": [`)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed json")
	}
}

func TestNormalize_FillsEmptyFields(t *testing.T) {
	path := writeCorpus(t, `{
		"documents": [
			{"id": "1", "title": "Has Body", "full_content": "Body text.", "url": "https://docs.example.com/1"},
			{"id": "2", "title": "Empty Body", "full_content": ""},
			{"id": "3", "full_content": ""}
		]
	}`)
	records, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	docs := Normalize(records)
	if len(docs) != 3 {
		t.Fatalf("Expected 3 docs, got %d", len(docs))
	}

	if docs[0].Content != "Body text." {
		t.Errorf("Content with a body should pass through, got %q", docs[0].Content)
	}
	if docs[1].Content != "# Empty Body\n\n" {
		t.Errorf("Empty body should become a title heading, got %q", docs[1].Content)
	}
	if docs[2].Content != "# Untitled\n\n" {
		t.Errorf("Missing title fallback wrong, got %q", docs[2].Content)
	}
	if docs[2].Metadata.Title != "Unknown" {
		t.Errorf("Metadata title fallback wrong, got %q", docs[2].Metadata.Title)
	}
}
