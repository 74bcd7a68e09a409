package gate

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the legacy MD5 signature over the given parameters: every
// non-empty field except the signature itself, sorted by name, joined as
// name=value pairs with '&', followed by the shared secret. The wire format
// is fixed by the upstream channel providers and cannot change.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if isSignatureField(k) || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func isSignatureField(name string) bool {
	return strings.EqualFold(name, "sign")
}

func signatureOf(params map[string]string) string {
	for k, v := range params {
		if isSignatureField(k) {
			return v
		}
	}
	return ""
}
