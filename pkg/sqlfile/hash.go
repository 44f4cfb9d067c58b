package sqlfile

import (
	"crypto/sha256"
	"fmt"
)

// Hash computes the content hash of a statement group: the SHA-256 digest of
// the statements concatenated without a separator, as uppercase hex.
func Hash(statements []string) string {
	h := sha256.New()
	for _, stmt := range statements {
		_, _ = h.Write([]byte(stmt))
	}

	return fmt.Sprintf("%X", h.Sum(nil))
}
