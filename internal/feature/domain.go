package feature

import "strings"

// ExtractDomain derives a normalized second-level domain from a sender
// string: the substring after the last "@", lowercased, reduced to its last
// two dot labels ("mail.google.com" -> "google.com"). Senders without an
// "@" map to "unknown". Best-effort lexical reduction, not a DNS-aware
// parse; applied identically at training and inference time.
func ExtractDomain(sender string) string {
	at := strings.LastIndex(sender, "@")
	if at < 0 {
		return "unknown"
	}
	dom := strings.ToLower(sender[at+1:])
	parts := strings.Split(dom, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return dom
}
