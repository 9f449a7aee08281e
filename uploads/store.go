package uploads

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JoelJacobStephen/litxplore/errors"
)

// MaxSize is the upload ceiling. Streams are aborted the moment it is
// crossed.
const MaxSize = 15 << 20

const readChunkSize = 64 << 10

var pdfMagic = []byte("%PDF-")

// Store keeps uploaded PDFs on local disk under a content-hash derived
// path: {dir}/{hash}.pdf. The file's existence is its lifecycle record.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload dir: %v", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the deterministic location for a content hash.
func (s *Store) Path(hash string) string {
	return filepath.Join(s.dir, hash+".pdf")
}

// Save validates and persists an uploaded PDF, returning the content hash.
// Validation: the filename must end in .pdf, the bytes must start with the
// PDF magic header, and the stream must not exceed MaxSize. The stream is
// consumed in fixed-size chunks and aborted as soon as the ceiling is
// crossed; a partial spool file is removed, never left behind. Saving the
// same bytes twice lands on the same path.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", errors.New("file must be a PDF", errors.BadRequest())
	}

	tmp, err := os.CreateTemp(s.dir, "upload-*.part")
	if err != nil {
		return "", fmt.Errorf("could not create spool file: %v", err)
	}
	tmpName := tmp.Name()

	hash, err := s.spool(tmp, r)
	tmp.Close()
	if err != nil {
		os.Remove(tmpName)
		return "", err
	}

	if err := os.Rename(tmpName, s.Path(hash)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("could not store upload: %v", err)
	}

	return hash, nil
}

func (s *Store) spool(w io.Writer, r io.Reader) (string, error) {
	hasher := sha256.New()

	// Readers are free to return fewer bytes than asked, so the magic
	// header is buffered in full before the comparison.
	header := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, header)
	if err == io.EOF {
		return "", errors.New("file is empty", errors.BadRequest())
	}
	if err == io.ErrUnexpectedEOF || !bytes.Equal(header[:n], pdfMagic) {
		return "", errors.New("file is not a valid PDF", errors.BadRequest())
	}
	if err != nil {
		return "", fmt.Errorf("could not read upload: %v", err)
	}

	total := int64(n)
	hasher.Write(header)
	if _, werr := w.Write(header); werr != nil {
		return "", fmt.Errorf("could not write upload: %v", werr)
	}

	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]

			total += int64(n)
			if total > MaxSize {
				return "", errors.New("file exceeds the 15 MiB limit", errors.BadRequest())
			}

			hasher.Write(chunk)
			if _, werr := w.Write(chunk); werr != nil {
				return "", fmt.Errorf("could not write upload: %v", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("could not read upload: %v", err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))[:16], nil
}

// Read returns the bytes for a content hash.
func (s *Store) Read(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(hash))
	if os.IsNotExist(err) {
		return nil, errors.New(fmt.Sprintf("uploaded paper %s not found", hash), errors.NotFound())
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Exists reports whether a file backs the given hash.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.Path(hash))
	return err == nil
}

// Delete removes the file backing a hash. Deleting a missing file is not
// an error.
func (s *Store) Delete(hash string) error {
	err := os.Remove(s.Path(hash))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
