package mws

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// StringToSign assembles the exact text that is HMAC'd: method, host, path and
// the canonical parameter string separated by newlines.
func StringToSign(method, domain, path, canonical string) string {
	return strings.Join([]string{
		strings.ToUpper(method),
		hostOf(domain),
		path,
		canonical,
	}, "\n")
}

// Sign computes the request signature and returns it percent-encoded, ready to
// append to the query string.
func Sign(secret, method, domain, path, canonical string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(StringToSign(method, domain, path, canonical)))
	return percentEncode(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// hostOf strips any scheme and trailing slash from domain and lower-cases it.
func hostOf(domain string) string {
	if _, after, ok := strings.Cut(domain, "://"); ok {
		domain = after
	}
	return strings.ToLower(strings.TrimRight(domain, "/"))
}
