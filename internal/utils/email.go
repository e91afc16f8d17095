package utils

import "strings"

// NormalizeRecipients trims, lowercases and deduplicates a recipient list,
// dropping empty entries.
func NormalizeRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	normalized := make([]string, 0, len(recipients))

	for _, recipient := range recipients {
		recipient = strings.ToLower(strings.TrimSpace(recipient))
		if recipient == "" {
			continue
		}
		if _, exists := seen[recipient]; !exists {
			seen[recipient] = struct{}{}
			normalized = append(normalized, recipient)
		}
	}

	return normalized
}
