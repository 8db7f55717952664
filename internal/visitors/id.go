package visitors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// BuildSignature creates a privacy-first visitor identifier. The signature
// rotates daily at midnight UTC, so visitors cannot be followed across days.
// The IP address is never stored, only hashed.
func BuildSignature(siteDomain, ipAddress, userAgent, salt string) string {
	today := time.Now().UTC().Format("2006-01-02")
	dailySalt := fmt.Sprintf("%s-%s", today, salt)
	data := fmt.Sprintf("%s.%s.%s.%s", dailySalt, siteDomain, ipAddress, userAgent)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
