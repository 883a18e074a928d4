package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"time"
)

const pairCodeLength = 8

// generatePairCode creates a fresh pairing code, overwriting any previous
// one, and writes it to the side file so it survives a page reload of the
// status server. Regeneration is idempotent; no uniqueness across restarts.
func (c *Controller) generatePairCode() error {
	code := newPairCode(pairCodeLength)

	c.mu.Lock()
	c.pairCode = code
	c.mu.Unlock()

	c.logger.Info("pairing code generated", "code", code)

	body := fmt.Sprintf("Pair Code: %s\nGenerated at: %s\n", code, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(c.pairCodeFile, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write pair code file: %w", err)
	}
	return nil
}

// newPairCode generates a cryptographically random numeric code of the given
// length.
func newPairCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// Fallback to less secure but still functional
			code[i] = '0'
			continue
		}
		code[i] = byte('0') + byte(n.Int64())
	}
	return string(code)
}
