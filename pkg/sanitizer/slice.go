package sanitizer

import "strings"

// NormalizeStringSlice applies normalizer to every item, then drops empty
// results and duplicates. The first spelling of a duplicate wins and order
// is preserved. The result is never nil.
func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		normalized := normalizer(item)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

// NormalizeTags treats items as a case-insensitive set of short labels such
// as dietary requirements.
func NormalizeTags(items []string) []string {
	return NormalizeStringSlice(items, TrimAndNormalize)
}
