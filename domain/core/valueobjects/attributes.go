package valueobjects

// ScanAttributeIDs walks an attribute tree and collects every string
// value that is structurally a valid raw identifier. Attribute trees
// are JSON-like: nil, bool, number, string, []interface{} and
// map[string]interface{} at arbitrary depth. The walk is structural on
// purpose; it never inspects concrete entity shapes, so a reference
// embedded three maps deep is found the same way as a top-level
// "created_by" field.
//
// The result preserves first-seen order and contains no duplicates.
func ScanAttributeIDs(attributes map[string]interface{}) []EntityID {
	seen := make(map[string]bool)
	var found []EntityID

	var walk func(v interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case string:
			if IsRawID(val) && !seen[val] {
				seen[val] = true
				id, err := NewEntityIDFromString(val)
				if err == nil {
					found = append(found, id)
				}
			}
		case map[string]interface{}:
			for _, child := range val {
				walk(child)
			}
		case []interface{}:
			for _, child := range val {
				walk(child)
			}
		}
		// nil, bool and numeric leaves carry no references
	}

	for _, v := range attributes {
		walk(v)
	}
	return found
}
