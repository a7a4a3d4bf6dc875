package ai

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoAPIKey is returned by NewClient when GEMINI_API_KEY is unset. Callers
// treat this as a signal to run in rule-based fallback mode rather than as a
// fatal error.
var ErrNoAPIKey = fmt.Errorf("GEMINI_API_KEY environment variable is required")

// Client wraps the GenAI client with a chat model and an embedding model.
type Client struct {
	genaiClient *genai.Client
	chat        *genai.GenerativeModel
	embed       *genai.EmbeddingModel
}

// NewClient creates a connected AI client. modelName selects the generative
// model used for conversational replies.
func NewClient(ctx context.Context, modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	chat := c.GenerativeModel(modelName)
	chat.SetTemperature(0.4)

	return &Client{
		genaiClient: c,
		chat:        chat,
		embed:       c.EmbeddingModel("text-embedding-004"),
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c != nil && c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

// Reply sends a prompt to the generative model and returns the text of the
// first candidate. Transient failures are retried with a short delay.
func (c *Client) Reply(ctx context.Context, prompt string) (string, error) {
	var out string
	err := retry(3, 500*time.Millisecond, func() error {
		resp, err := c.chat.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return err
		}
		text := flatten(resp)
		if text == "" {
			return fmt.Errorf("AI returned empty response")
		}
		out = text
		return nil
	})
	return out, err
}

func flatten(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// EmbedString generates a vector for the given text and returns it as a byte
// slice (for DB storage) plus the raw []float32.
func (c *Client) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	res, err := c.embed.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, nil, err
	}
	if res.Embedding == nil {
		return nil, nil, fmt.Errorf("AI returned empty embedding")
	}

	blob, err := FloatsToBytes(res.Embedding.Values)
	if err != nil {
		return nil, nil, err
	}
	return blob, res.Embedding.Values, nil
}

// --- Vector math helpers ---

// CosineSimilarity calculates the similarity between two vectors (0.0 to 1.0).
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dotProduct, magA, magB float32
	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dotProduct / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB))))
}

// FloatsToBytes converts a []float32 slice to a []byte slice (BLOB) for SQLite.
func FloatsToBytes(floats []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, floats); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToFloats converts the stored byte slice back to []float32.
func BytesToFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid byte length for float32 slice")
	}
	floats := make([]float32, len(b)/4)
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &floats)
	return floats, err
}
