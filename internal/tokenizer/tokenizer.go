package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding is the subword encoding used for every count. The BPE ranks ship
// embedded in the binary, so counts never depend on network or environment.
const Encoding = "cl100k_base"

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Tokenizer counts tokens in text. Build one at startup and share it.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the fixed encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", Encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in text. Special-token markers in the
// input are encoded as ordinary text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.EncodeOrdinary(text))
}

// EncodingName reports the encoding identifier.
func (t *Tokenizer) EncodingName() string {
	return Encoding
}
