package litxplore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaperID(t *testing.T) {
	tests := map[string]struct {
		raw      string
		expected PaperID
	}{
		"arxiv":              {"1706.03762", PaperID{Kind: KindArxiv, Value: "1706.03762"}},
		"arxiv with version": {"1706.03762v5", PaperID{Kind: KindArxiv, Value: "1706.03762"}},
		"old style arxiv":    {"cs/9301113v2", PaperID{Kind: KindArxiv, Value: "cs/9301113"}},
		"upload":             {"upload_deadbeefdeadbeef", PaperID{Kind: KindUpload, Value: "deadbeefdeadbeef"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePaperID(tt.raw))
		})
	}
}

func TestPaperID_String(t *testing.T) {
	assert.Equal(t, "1706.03762", PaperID{Kind: KindArxiv, Value: "1706.03762"}.String())
	assert.Equal(t, "upload_deadbeefdeadbeef", PaperID{Kind: KindUpload, Value: "deadbeefdeadbeef"}.String())
}

func TestParsePaperID_roundTrip(t *testing.T) {
	for _, raw := range []string{"1706.03762", "upload_deadbeefdeadbeef"} {
		assert.Equal(t, raw, ParsePaperID(raw).String())
	}
}

func TestUploadIDFor(t *testing.T) {
	data := []byte("%PDF-1.4 some content")

	id := UploadIDFor(data)
	assert.Equal(t, KindUpload, id.Kind)
	assert.Len(t, id.Value, 16)

	// Identical bytes always produce the same identity.
	assert.Equal(t, id, UploadIDFor(data))
	assert.NotEqual(t, id, UploadIDFor([]byte("%PDF-1.4 other content")))
}
