package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
)

// Load reads the help-center export. The file shape is fixed:
// {"documents": [...]}. A missing or malformed file is fatal for the caller.
func Load(path string) ([]commonModels.SourceRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}

	var payload struct {
		Documents []commonModels.SourceRecord `json:"documents"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}
	return payload.Documents, nil
}

// Normalize maps raw records 1:1 into documents the chunker can take.
// Articles with no body get a title-only heading so nothing ends up empty.
func Normalize(records []commonModels.SourceRecord) []commonModels.ArticleDoc {
	docs := make([]commonModels.ArticleDoc, 0, len(records))

	for _, rec := range records {
		content := rec.FullContent
		if content == "" {
			title := rec.Title
			if title == "" {
				title = "Untitled"
			}
			content = fmt.Sprintf("# %s\n\n", title)
		}

		title := rec.Title
		if title == "" {
			title = "Unknown"
		}

		docs = append(docs, commonModels.ArticleDoc{
			Content: content,
			Metadata: commonModels.DocMetadata{
				Title:       title,
				ArticleId:   string(rec.Id),
				LastUpdated: rec.LastUpdated,
				URL:         rec.URL,
			},
		})
	}
	return docs
}
