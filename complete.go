package toskema

// CheckAndComplete validates like Check but first injects declared defaults:
// every table reached through a literal entry or an array element has its
// defaulted literal entries inserted when absent. Present keys are never
// altered or removed, so completing an already-completed document is a
// no-op. Insertion mutates the candidate tables in place; the caller must
// hold exclusive access to the value for the duration of the call.
//
// Defaults are deep-copied on insertion, and they were never validated at
// compile time: a default that does not match its own entry schema makes
// CheckAndComplete fail where Check would only report the entry as absent.
// Alternative options and extras schemas validate without completing, so a
// rejected branch leaves no mutations behind. Completion performed before a
// later failure is detected is kept.
func (s *Schema) CheckAndComplete(v any) error {
	if e := s.check(v, true); e != nil {
		return e
	}
	return nil
}

// cloneValue deep-copies the composite layers of a value. Leaves are
// immutable in the value model and are shared.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
