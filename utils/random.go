package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateCode returns an upper-case hex string built from n random bytes.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// NewTicketID derives a ticket id from the current time. Uniqueness is
// best-effort, not cryptographically guaranteed.
func NewTicketID() string {
	return fmt.Sprintf("TKT-%d", time.Now().UnixNano())
}
