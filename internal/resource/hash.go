package resource

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainResource prefixes resource checksums. The version suffix allows a
// future change of algorithm to invalidate every stored checksum at once.
const DomainResource = "kiln/resource/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Checksum returns the content checksum used for change detection.
func Checksum(data []byte) string {
	return hashWithDomain(DomainResource, data)
}
