package corpus

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

// Articles reference images three different ways depending on how old the
// export is: an explicit attachments list, "image" nodes inside the document
// structure tree, and inline ![Image](IMAGE_ID:123) markup in the body.
// The resolver collects all three and unions them.

var inlineImagePattern = regexp.MustCompile(`!\[Image\]\(IMAGE_ID:(\d+)\)`)

type Resolver struct {
	corpusPath string
	logger     *logger_i.Logger
}

func NewResolver(corpusPath string) *Resolver {
	return &Resolver{
		corpusPath: corpusPath,
		logger:     logger_i.NewLogger("AttachmentResolver"),
	}
}

// AttachmentIDsForArticles returns the deduplicated image ids associated with
// the given article ids, in first-seen order. An article with no images by
// any method is not an error.
func (r *Resolver) AttachmentIDsForArticles(articleIDs []string) ([]string, error) {
	records, err := Load(r.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("attachment lookup: %w", err)
	}

	wanted := make(map[string]bool, len(articleIDs))
	for _, id := range articleIDs {
		wanted[id] = true
	}

	var ids []string
	for _, rec := range records {
		if !wanted[string(rec.Id)] {
			continue
		}
		r.logger.Debug("Matched article for attachment lookup", "articleId", rec.Id, "title", rec.Title)

		// Method 1: explicit attachments list
		for _, att := range rec.Attachments {
			if att.Id != "" {
				ids = append(ids, string(att.Id))
			}
		}

		// Method 2: image nodes in the structure tree
		ids = append(ids, r.structureImageIds(rec.DocumentStructure)...)

		// Method 3: inline markup in the body
		for _, m := range inlineImagePattern.FindAllStringSubmatch(rec.FullContent, -1) {
			ids = append(ids, m[1])
		}
	}

	unique := dedupe(ids)
	r.logger.Debug("Attachment lookup complete", "articles", len(articleIDs), "uniqueIds", len(unique))
	return unique, nil
}

func (r *Resolver) structureImageIds(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		r.logger.Warn("Skipping unparseable document structure", "error", err)
		return nil
	}
	return walkStructure(tree)
}

// walkStructure is a depth-first walk over the decoded JSON tree. Any object
// tagged type=="image" contributes its id; every other field and every list
// element is recursed into. Keys are visited sorted so the walk is
// deterministic.
func walkStructure(node any) []string {
	var ids []string

	switch v := node.(type) {
	case []any:
		for _, item := range v {
			ids = append(ids, walkStructure(item)...)
		}
	case map[string]any:
		if v["type"] == "image" {
			if id, ok := scalarId(v["id"]); ok {
				ids = append(ids, id)
			}
		}
		for _, key := range slices.Sorted(maps.Keys(v)) {
			if key == "type" { //already inspected above
				continue
			}
			ids = append(ids, walkStructure(v[key])...)
		}
	}
	return ids
}

func scalarId(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
