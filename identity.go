package litxplore

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// UploadPrefix marks identifiers that refer to uploaded PDFs rather than
// arXiv records.
const UploadPrefix = "upload_"

var arxivVersion = regexp.MustCompile(`v\d+$`)

type PaperKind int

const (
	KindArxiv PaperKind = iota
	KindUpload
)

// PaperID is the stable identity of a paper: either an arXiv base id
// (version suffix stripped) or the content hash of an uploaded PDF.
type PaperID struct {
	Kind PaperKind
	// Value holds the arXiv base id or the upload content hash.
	Value string
}

func (id PaperID) String() string {
	if id.Kind == KindUpload {
		return UploadPrefix + id.Value
	}
	return id.Value
}

// ParsePaperID derives the identity from a raw identifier. It is pure: no
// I/O happens here, and a hash with no backing file is still a valid
// identity that downstream lookups will report as not found.
func ParsePaperID(raw string) PaperID {
	if strings.HasPrefix(raw, UploadPrefix) {
		return PaperID{Kind: KindUpload, Value: strings.TrimPrefix(raw, UploadPrefix)}
	}
	return PaperID{Kind: KindArxiv, Value: arxivVersion.ReplaceAllString(raw, "")}
}

// UploadIDFor computes the identity of uploaded PDF bytes. Identical bytes
// always yield the same identity.
func UploadIDFor(data []byte) PaperID {
	sum := sha256.Sum256(data)
	return PaperID{Kind: KindUpload, Value: hex.EncodeToString(sum[:])[:16]}
}
