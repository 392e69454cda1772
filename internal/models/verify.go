package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/siryoos/caro/internal/generator"
)

// ggufMagic is the four-byte magic marker every quantized model file
// must start with (§3 Cached Model).
var ggufMagic = []byte("GGUF")

const partialHashBytes = 1 << 20 // first megabyte, per §4.3

// Verified is the resolved, checked state of a cached model file.
type Verified struct {
	Path         string
	SizeBytes    int64
	PartialSHA256 string
}

// Verify asserts the file at path exists, falls within d's expected size
// envelope (±20%), starts with the GGUF magic, and computes a partial
// SHA-256 over its first megabyte as a cheap integrity witness. Any
// failure deletes the file and returns GenerationFailed with remediation
// (§4.3 Invalidation).
func Verify(path string, d Descriptor) (Verified, error) {
	f, err := os.Open(path)
	if err != nil {
		return Verified{}, generator.GenerationFailed(fmt.Sprintf("model file missing: %v", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return invalidate(path, fmt.Sprintf("stat failed: %v", err))
	}

	expected := d.ExpectedMiB * 1024 * 1024
	margin := expected / 5 // 20%
	if info.Size() < expected-margin || info.Size() > expected+margin {
		return invalidate(path, fmt.Sprintf("size %d bytes outside expected envelope for %s", info.Size(), d.ID))
	}

	magic := make([]byte, len(ggufMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return invalidate(path, fmt.Sprintf("reading magic bytes: %v", err))
	}
	for i := range ggufMagic {
		if magic[i] != ggufMagic[i] {
			return invalidate(path, "file does not start with the GGUF magic marker")
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return invalidate(path, fmt.Sprintf("seeking for hash: %v", err))
	}
	h := sha256.New()
	if _, err := io.CopyN(h, f, partialHashBytes); err != nil && err != io.EOF {
		return invalidate(path, fmt.Sprintf("hashing: %v", err))
	}

	return Verified{
		Path:          path,
		SizeBytes:     info.Size(),
		PartialSHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

func invalidate(path, reason string) (Verified, error) {
	os.Remove(path)
	return Verified{}, &generator.Error{
		Kind:    generator.KindGenerationFailed,
		Message: fmt.Sprintf("model verification failed, local copy removed: %s", reason),
		Remediation: "Re-download the model, or select a smaller variant:\n" +
			"  CARO_MODEL=caro-1b-cpu caro ...",
	}
}
