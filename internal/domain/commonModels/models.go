package commonModels

import "encoding/json"

// FlexId accepts both string and numeric JSON ids - the help center export is
// not consistent about which one it emits.
type FlexId string

func (f *FlexId) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexId(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexId(n.String())
	return nil
}

// SourceRecord is one article exactly as it sits in the corpus export.
// DocumentStructure stays raw - the attachment resolver walks it generically.
type SourceRecord struct {
	Id                FlexId          `json:"id"`
	Title             string          `json:"title"`
	FullContent       string          `json:"full_content"`
	LastUpdated       string          `json:"last_updated"`
	URL               string          `json:"url"`
	Attachments       []Attachment    `json:"attachments,omitempty"`
	DocumentStructure json.RawMessage `json:"document_structure,omitempty"`
}

type Attachment struct {
	Id FlexId `json:"id"`
}

type DocMetadata struct {
	Title       string `json:"title"`
	ArticleId   string `json:"article_id"`
	LastUpdated string `json:"last_updated"`
	URL         string `json:"url"`
}

// ArticleDoc is a normalized document - content is never empty
type ArticleDoc struct {
	Content  string
	Metadata DocMetadata
}

type DocChunk struct {
	ChunkId  string `json:"chunk_id"`
	Content  string `json:"content"`
	Order    int    `json:"chunk_order"`
	Metadata DocMetadata
}

type Source struct {
	Title     string `json:"title"`
	ArticleId string `json:"article_id"`
	URL       string `json:"url"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type AnswerResult struct {
	Answer      string   `json:"answer"`
	Sources     []Source `json:"sources"`
	Attachments []string `json:"attachments"`
}

// SearchHit is one similarity-search result pulled back out of the index
type SearchHit struct {
	Content  string
	Metadata DocMetadata
	Score    float32
}
