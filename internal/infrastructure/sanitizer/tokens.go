package sanitizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// TokenCounter counts model tokens in a text.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

func (f TokenCounterFunc) Count(text string) int { return f(text) }

const encodingName = "cl100k_base"

type tiktokenCounter struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enc.Encode(text, nil, nil))
}

// approxCounter assumes four characters per token.
type approxCounter struct{}

func (approxCounter) Count(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// DefaultCounter is a cl100k_base BPE counter with embedded vocabulary.
// If the vocabulary cannot be loaded it degrades to a length estimate.
var DefaultCounter = sync.OnceValue(func() TokenCounter {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return approxCounter{}
	}
	return &tiktokenCounter{enc: enc}
})
