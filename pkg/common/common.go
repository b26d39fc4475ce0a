package common

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(int64(os.Getpid() % 1023))
	if err != nil {
		snowflakeNode, _ = snowflake.NewNode(1)
	}
}

// UUIDint64 returns a snowflake int64 id.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake id in base36 string form, used for
// checkout idempotency keys and reset tokens.
func UUID() string {
	return snowflakeNode.Generate().Base36()
}

// RandomHex returns n random bytes hex encoded.
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return snowflakeNode.Generate().Base36()
	}
	return hex.EncodeToString(b)
}

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s is a syntactically valid email address.
// The pattern matches the storefront's checkout validation.
func ValidEmail(s string) bool {
	return emailRegexp.MatchString(s)
}

// FmtTime formats t in the application's standard layout.
func FmtTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
