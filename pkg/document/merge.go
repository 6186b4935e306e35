package document

// Merge deep-merges override onto base and returns the result;
// neither input is modified. For each override key, when base and
// override both hold a mapping the two are merged recursively,
// otherwise the override value replaces the base value wholesale.
// Keys new to base are appended in override order.
func Merge(base, override Node) Node {
	if base.kind != Mapping || override.kind != Mapping {
		return override
	}

	entries := base.Entries()
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Key] = i
	}

	for _, e := range override.Entries() {
		i, exists := index[e.Key]
		if !exists {
			index[e.Key] = len(entries)
			entries = append(entries, e)
			continue
		}
		entries[i].Value = Merge(entries[i].Value, e.Value)
	}

	return NewMapping(entries...)
}
