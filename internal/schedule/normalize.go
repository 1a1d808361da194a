package schedule

// nameAliases maps exact raw program names to their canonical form.
// Matching is byte-for-byte: no trimming, no case folding.
var nameAliases = map[string]string{
	"Yle Uutiset ja sää": "Yle Uutiset",
}

// NormalizeName returns the canonical display name for a raw program name.
func NormalizeName(name string) string {
	if canonical, ok := nameAliases[name]; ok {
		return canonical
	}
	return name
}
