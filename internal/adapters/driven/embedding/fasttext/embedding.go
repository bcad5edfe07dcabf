// Package fasttext provides an embedding service backed by a local
// fastText word-vector file (the textual .vec format).
//
// A sentence vector is the mean of the L2-normalised vectors of its known
// tokens. Tokens are lower-cased runs of letters and digits. Unknown tokens
// are skipped, so a sentence of only unknown words embeds to the zero vector.
package fasttext

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// maxLineSize bounds a single .vec line (a 300-d vector is ~4 KiB).
const maxLineSize = 1 << 20

// Config holds configuration for the fastText embedding service.
type Config struct {
	// Path is the .vec file.
	Path string

	// Model names the vectors for display. Defaults to the file name.
	Model string

	// MaxWords stops loading after this many words. Zero loads all.
	// .vec files are sorted by frequency, so this keeps the common words.
	MaxWords int
}

// EmbeddingService embeds text with averaged word vectors.
type EmbeddingService struct {
	model string
	dim   int
	words map[string]int32
	slab  []float32
}

// NewEmbeddingService loads the vector file named in cfg.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: fasttext vector path is required", domain.ErrEmbeddingUnavailable)
	}

	logger.Section("Load fastText Vectors")
	logger.Debug("Path: %s", cfg.Path)

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open vectors: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer f.Close()

	if cfg.Model == "" {
		cfg.Model = strings.TrimSuffix(filepath.Base(cfg.Path), filepath.Ext(cfg.Path))
	}

	s, err := Read(f, cfg.Model, cfg.MaxWords)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded %d words of dimension %d", len(s.words), s.dim)
	return s, nil
}

// Read parses .vec data: a "count dimension" header line, then one word
// and its components per line.
func Read(r io.Reader, model string, maxWords int) (*EmbeddingService, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%w: read header: %v", domain.ErrEmbeddingUnavailable, err)
		}
		return nil, fmt.Errorf("%w: empty vector file", domain.ErrEmbeddingUnavailable)
	}
	header := strings.Fields(sc.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: malformed header %q", domain.ErrEmbeddingUnavailable, sc.Text())
	}
	count, err1 := strconv.Atoi(header[0])
	dim, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil || count < 0 || dim <= 0 {
		return nil, fmt.Errorf("%w: malformed header %q", domain.ErrEmbeddingUnavailable, sc.Text())
	}
	if maxWords > 0 && maxWords < count {
		count = maxWords
	}

	s := &EmbeddingService{
		model: model,
		dim:   dim,
		words: make(map[string]int32, count),
		slab:  make([]float32, 0, count*dim),
	}

	line := 1
	for sc.Scan() {
		line++
		if maxWords > 0 && len(s.words) >= maxWords {
			break
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("%w: line %d has %d components, expected %d",
				domain.ErrEmbeddingUnavailable, line, len(fields)-1, dim)
		}

		word := fields[0]
		if _, dup := s.words[word]; dup {
			continue
		}

		off := len(s.slab)
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", domain.ErrEmbeddingUnavailable, line, err)
			}
			s.slab = append(s.slab, float32(v))
		}
		normalize(s.slab[off:])
		s.words[word] = int32(len(s.words))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read vectors: %v", domain.ErrEmbeddingUnavailable, err)
	}

	return s, nil
}

// New builds a service from in-memory word vectors. Vectors are copied and
// normalised; every vector must have length dim.
func New(model string, dim int, vectors map[string][]float32) (*EmbeddingService, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	s := &EmbeddingService{
		model: model,
		dim:   dim,
		words: make(map[string]int32, len(vectors)),
	}
	for w, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector for %q has length %d", domain.ErrInvalidInput, w, len(v))
		}
		off := len(s.slab)
		s.slab = append(s.slab, v...)
		normalize(s.slab[off:])
		s.words[w] = int32(len(s.words))
	}
	return s, nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// Tokenize lower-cases text and splits it into runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Embed returns the sentence vector of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in %q", domain.ErrEmbedding, text)
	}

	out := make([]float32, s.dim)
	known := 0
	for _, tok := range tokens {
		row, ok := s.words[tok]
		if !ok {
			continue
		}
		off := int(row) * s.dim
		for i, v := range s.slab[off : off+s.dim] {
			out[i] += v
		}
		known++
	}

	if known > 0 {
		inv := 1 / float32(known)
		for i := range out {
			out[i] *= inv
		}
	} else {
		logger.Debug("fasttext: all %d tokens out of vocabulary", len(tokens))
	}
	return out, nil
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dim
}

// ModelName returns the model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Vocabulary returns the number of known words.
func (s *EmbeddingService) Vocabulary() int {
	return len(s.words)
}

// Ping fails when no words were loaded, since every title would then
// embed to the zero vector.
func (s *EmbeddingService) Ping(_ context.Context) error {
	if s.Vocabulary() == 0 {
		return fmt.Errorf("%w: %s has no word vectors", domain.ErrEmbeddingUnavailable, s.model)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
