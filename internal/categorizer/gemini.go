package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/parsererror"
)

// DefaultChunkSize bounds the descriptions sent in one request.
const DefaultChunkSize = 40

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini API")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// GeminiClassifier sends descriptions to Gemini in chunks.
type GeminiClassifier struct {
	gen       Generator
	closer    func() error
	chunkSize int
	timeout   time.Duration
	examples  map[string]string
	logger    logging.Logger
}

// GeminiOptions configures a GeminiClassifier.
type GeminiOptions struct {
	Model     string
	ChunkSize int
	Timeout   time.Duration
	// Examples are description to label pairs shown in the prompt.
	Examples map[string]string
}

// NewGeminiClassifier connects to Gemini with apiKey.
func NewGeminiClassifier(ctx context.Context, apiKey string, opts GeminiOptions, logger logging.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	gen := &geminiGenerator{client: client, model: client.GenerativeModel(opts.Model)}
	c := NewGeminiClassifierWithGenerator(gen, opts, logger)
	c.closer = client.Close
	return c, nil
}

// NewGeminiClassifierWithGenerator builds a classifier over any Generator.
func NewGeminiClassifierWithGenerator(gen Generator, opts GeminiOptions, logger logging.Logger) *GeminiClassifier {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &GeminiClassifier{
		gen:       gen,
		chunkSize: opts.ChunkSize,
		timeout:   opts.Timeout,
		examples:  opts.Examples,
		logger:    logging.OrDefault(logger),
	}
}

// Name identifies the strategy in logs.
func (g *GeminiClassifier) Name() string { return "gemini" }

// Close releases the underlying client.
func (g *GeminiClassifier) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

// Classify labels descriptions chunk by chunk. A failed chunk is logged and
// skipped; an error is returned only when every chunk failed.
func (g *GeminiClassifier) Classify(ctx context.Context, descriptions []string, allowedLabels []string) (map[string]string, error) {
	out := make(map[string]string)
	var lastErr error
	failed, chunks := 0, 0

	for start := 0; start < len(descriptions); start += g.chunkSize {
		end := start + g.chunkSize
		if end > len(descriptions) {
			end = len(descriptions)
		}
		chunks++
		labels, err := g.classifyChunk(ctx, descriptions[start:end], allowedLabels)
		if err != nil {
			failed++
			lastErr = err
			g.logger.WithError(err).Warn("classification chunk failed",
				logging.F(logging.FieldCount, end-start))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		for k, v := range labels {
			out[k] = v
		}
	}

	if chunks > 0 && failed == chunks {
		return nil, &parsererror.CategorizationError{Classifier: g.Name(), Count: len(descriptions), Err: lastErr}
	}
	return out, nil
}

func (g *GeminiClassifier) classifyChunk(ctx context.Context, descriptions, allowedLabels []string) (map[string]string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	prompt, err := buildPrompt(descriptions, allowedLabels, g.examples)
	if err != nil {
		return nil, err
	}
	raw, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseLabelReply(raw)
}

func buildPrompt(descriptions, allowedLabels []string, examples map[string]string) (string, error) {
	items, err := json.Marshal(descriptions)
	if err != nil {
		return "", fmt.Errorf("encode descriptions: %w", err)
	}
	var b strings.Builder
	b.WriteString("You categorize bank and credit card transactions from Israeli statements.\n")
	b.WriteString("Descriptions may be in Hebrew or English.\n\n")
	b.WriteString("Allowed categories:\n")
	for _, l := range allowedLabels {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	if len(examples) > 0 {
		b.WriteString("\nExamples:\n")
		keys := make([]string, 0, len(examples))
		for d := range examples {
			keys = append(keys, d)
		}
		sort.Strings(keys)
		for _, d := range keys {
			fmt.Fprintf(&b, "%q -> %q\n", d, examples[d])
		}
	}
	b.WriteString("\nTransactions:\n")
	b.Write(items)
	b.WriteString("\n\nReturn ONLY a JSON object mapping each transaction description, exactly as given, ")
	b.WriteString("to one category name from the allowed list. Omit transactions you cannot categorize. ")
	b.WriteString("Do not wrap the response in code fences.\n")
	return b.String(), nil
}
