package ingest

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
)

// Separators ordered from "best" to "worst" for semantic meaning.
// The empty string is the raw character fallback.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

type splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func newSplitter(chunkSize int, overlap int) *splitter {
	return &splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split cuts text into chunks of at most chunkSize characters. It tries the
// highest-priority separator present in the text, recursing into oversized
// pieces with the remaining separators, down to a raw character cut.
// Deterministic: same text and config always yield the same chunks.
func (s *splitter) Split(text string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	return s.split(text, s.separators)
}

func (s *splitter) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardCut(text)
	}

	var final []string
	var fitting []string
	for _, piece := range strings.Split(text, sep) {
		if len(piece) < s.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		// flush what fits so far, then break the oversized piece down
		// with the lower-priority separators
		if len(fitting) > 0 {
			final = append(final, s.merge(fitting, sep)...)
			fitting = nil
		}
		final = append(final, s.split(piece, rest)...)
	}
	if len(fitting) > 0 {
		final = append(final, s.merge(fitting, sep)...)
	}
	return final
}

// merge packs pieces back into chunks up to chunkSize, carrying trailing
// pieces worth up to overlap characters into the next chunk.
func (s *splitter) merge(pieces []string, sep string) []string {
	sepLen := len(sep)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		pieceLen := len(piece)
		joinLen := 0
		if len(window) > 0 {
			joinLen = sepLen
		}

		if total+pieceLen+joinLen > s.chunkSize && len(window) > 0 {
			chunks = append(chunks, strings.Join(window, sep))

			// drop leading pieces until the retained tail fits both the
			// overlap budget and the incoming piece
			for total > s.overlap || (total+pieceLen+joinLen > s.chunkSize && total > 0) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
				joinLen = 0
				if len(window) > 0 {
					joinLen = sepLen
				}
			}
		}

		window = append(window, piece)
		total += pieceLen + joinLen
	}

	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, sep))
	}
	return chunks
}

// hardCut slices on raw characters - last resort for separator-free text
func (s *splitter) hardCut(text string) []string {
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := min(start+s.chunkSize, len(text))
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

// PrepareChunks splits every normalized document and stamps each chunk with a
// copy of its parent's metadata. Chunk ids are derived from article id and
// chunk order, so re-ingesting an unchanged corpus upserts the same points
// instead of accumulating duplicates.
func PrepareChunks(docs []commonModels.ArticleDoc) []commonModels.DocChunk {
	s := newSplitter(config.MaxChunkSize, config.ChunkOverlap)

	var allChunks []commonModels.DocChunk
	for _, doc := range docs {
		for i, text := range s.Split(doc.Content) {
			allChunks = append(allChunks, commonModels.DocChunk{
				ChunkId:  chunkId(doc.Metadata.ArticleId, i),
				Content:  text,
				Order:    i,
				Metadata: doc.Metadata,
			})
		}
	}
	return allChunks
}

func chunkId(articleId string, order int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(articleId+"#"+strconv.Itoa(order))).String()
}
