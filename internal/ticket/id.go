package ticket

import (
	"crypto/rand"
	"fmt"
	"time"
)

const protoAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewProtocol creates a human-presentable protocol ID of the form
// SN-XXXX-NNNNNN: four random uppercase alphanumerics plus the last six
// digits of the Unix-millisecond clock. Uniqueness is probabilistic, not
// guaranteed; Save overwrites on the rare collision.
func NewProtocol(now time.Time) string {
	b := make([]byte, 4)
	rand.Read(b)
	for i := range b {
		b[i] = protoAlphabet[int(b[i])%len(protoAlphabet)]
	}
	return fmt.Sprintf("SN-%s-%06d", b, now.UnixMilli()%1_000_000)
}
