package corpus

import (
	"slices"
	"testing"

	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

func init() {
	logger_i.Init()
}

// one article referencing the same image three different ways plus one
// unique id per method
const resolverCorpus = `{
	"documents": [
		{
			"id": "500",
			"title": "Dashboard Setup",
			"full_content": "Open the dashboard.\n\n![Image](IMAGE_ID:777)\n\n![Image](IMAGE_ID:111)",
			"url": "https://docs.example.com/500",
			"attachments": [{"id": "111"}, {"id": 222}],
			"document_structure": {
				"sections": [
					{"type": "image", "id": 333},
					{"type": "paragraph", "children": [{"type": "image", "id": "111"}]}
				]
			}
		},
		{
			"id": "600",
			"title": "Unrelated Article",
			"full_content": "![Image](IMAGE_ID:999)",
			"attachments": [{"id": "888"}]
		}
	]
}`

func TestAttachmentIDsForArticles_AllThreeMethods(t *testing.T) {
	r := NewResolver(writeCorpus(t, resolverCorpus))

	ids, err := r.AttachmentIDsForArticles([]string{"500"})
	if err != nil {
		t.Fatalf("AttachmentIDsForArticles failed: %v", err)
	}

	// explicit list first (111, 222), then tree images (333), inline markup
	// adds 777; 111 appears three times but survives only once
	want := []string{"111", "222", "333", "777"}
	if !slices.Equal(ids, want) {
		t.Errorf("Ids got %v, want %v", ids, want)
	}
}

func TestAttachmentIDsForArticles_IgnoresOtherArticles(t *testing.T) {
	r := NewResolver(writeCorpus(t, resolverCorpus))

	ids, err := r.AttachmentIDsForArticles([]string{"500"})
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(ids, "888") || slices.Contains(ids, "999") {
		t.Errorf("Ids from unrequested article leaked in: %v", ids)
	}
}

func TestAttachmentIDsForArticles_NoImagesIsNotAnError(t *testing.T) {
	r := NewResolver(writeCorpus(t, `{"documents":[{"id":"1","title":"Plain","full_content":"text only"}]}`))

	ids, err := r.AttachmentIDsForArticles([]string{"1"})
	if err != nil {
		t.Fatalf("Expected no error for article without images, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no ids, got %v", ids)
	}
}

func TestAttachmentIDsForArticles_UnreadableCorpus(t *testing.T) {
	r := NewResolver("does-not-exist.json")
	if _, err := r.AttachmentIDsForArticles([]string{"1"}); err == nil {
		t.Error("Expected error for unreadable corpus")
	}
}

func TestWalkStructure_SkipsMalformedNodes(t *testing.T) {
	ids := walkStructure(map[string]any{
		"type": "image",
		// id is an object, not a scalar - contributes nothing
		"id":       map[string]any{"nested": true},
		"children": []any{map[string]any{"type": "image", "id": float64(42)}},
	})
	if !slices.Equal(ids, []string{"42"}) {
		t.Errorf("Ids got %v, want [42]", ids)
	}
}
