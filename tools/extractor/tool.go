package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/bububa/marksix-agents/marksix"
	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
)

// ErrCacheMiss returned by a Cache without an entry for the image hash
var ErrCacheMiss = errors.New("extraction cache miss")

// Cache stores validated draws by prepared image hash
type Cache interface {
	Find(ctx context.Context, imageHash string) (*marksix.DrawResult, error)
	Save(ctx context.Context, imageHash string, result *marksix.DrawResult) error
}

// Input Extract Hong Kong Mark Six lottery results from an image file
type Input struct {
	schema.Base
	// ImagePath Path to the local image file containing Mark Six results
	ImagePath string `json:"image_path" jsonschema:"title=image_path,description=Path to the local image file containing Mark Six results." validate:"required"`
}

func NewInput(path string) *Input {
	return &Input{
		ImagePath: path,
	}
}

// Output the validated draw read from the image
type Output struct {
	schema.Base
	Result *marksix.DrawResult `json:"result"`
	// Cached is true when the draw came from the cache
	Cached bool `json:"-"`
}

// String implements fmt.Stringer
func (o Output) String() string {
	if o.Result == nil {
		return ""
	}
	return "Mark Six Results Extracted:\n" + o.Result.String()
}

type Tool struct {
	tools.Config
	backend Backend
	cache   Cache
}

var (
	_ tools.Tool[Input, Output] = (*Tool)(nil)
	_ tools.OrchestrationTool   = (*Tool)(nil)
)

// New returns an extractor tool, cache is optional
func New(backend Backend, cache Cache, opts ...tools.Option) *Tool {
	ret := &Tool{
		backend: backend,
		cache:   cache,
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("MarkSixExtractorTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Extract Hong Kong Mark Six lottery results from an image file.")
	}
	return ret
}

// Run reads the image, asks the backend for the draw and validates it
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	image, err := ReadImage(input.ImagePath)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(image)
	hash := hex.EncodeToString(sum[:])
	if t.cache != nil {
		if result, err := t.cache.Find(ctx, hash); err == nil {
			return &Output{Result: result, Cached: true}, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			// cache failures are reported but never block an extraction
			t.OnError(ctx, t, input, err)
		}
	}
	extraction, err := t.backend.Extract(ctx, image)
	if err != nil {
		return nil, err
	}
	result, err := extraction.ToDrawResult()
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		if err := t.cache.Save(ctx, hash, result); err != nil {
			t.OnError(ctx, t, input, err)
		}
	}
	return &Output{Result: result}, nil
}

// RunOrchestration implements tools.OrchestrationTool
func (t *Tool) RunOrchestration(ctx context.Context, input any) (any, error) {
	return tools.RunTyped(ctx, input, t.Run)
}
