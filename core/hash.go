package core

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash computes the identity of an imported item from its feed and
// canonical serialized form. The result is upper-case hex of BLAKE2b-256, so
// the same feed and payload always produce the same hash.
func ContentHash(feedID int64, canonical string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(strconv.FormatInt(feedID, 10)))
	h.Write([]byte{':'})
	h.Write([]byte(canonical))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}
