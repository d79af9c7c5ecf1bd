package access

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/zeebo/blake3"
)

const (
	idLength      = 64
	shortIDLength = 12
)

// NewID derives an opaque request id from the creation time, the requester,
// the channel and a random salt. The result is 64 lowercase hex characters.
func NewID(createdAt time.Time, requesterID, channelID snowflake.ID) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return deriveID(createdAt, requesterID, channelID, salt), nil
}

func deriveID(createdAt time.Time, requesterID, channelID snowflake.ID, salt []byte) string {
	buf := make([]byte, 0, 24+len(salt))
	buf = binary.BigEndian.AppendUint64(buf, uint64(createdAt.UnixNano()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(requesterID))
	buf = binary.BigEndian.AppendUint64(buf, uint64(channelID))
	buf = append(buf, salt...)

	sum := blake3.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	if len(id) != idLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ShortID is the prefix of id shown to people and written to logs. It is
// not enough to complete a verification.
func ShortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
