package domain

// IndexOf returns the index of the sound with the given reference, or -1.
func IndexOf(list []Sound, ref string) int {
	for i, s := range list {
		if s.AudioRef == ref {
			return i
		}
	}
	return -1
}

// Clone returns a copy of list that shares no backing array with it.
// A nil list clones to an empty, non-nil slice.
func Clone(list []Sound) []Sound {
	out := make([]Sound, len(list))
	copy(out, list)
	return out
}

// MoveElement returns a new list where the element at from is removed and
// reinserted at to. Both indices refer to positions in the original list.
// Out of range indices return an unchanged copy.
func MoveElement(list []Sound, from, to int) []Sound {
	out := Clone(list)
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]Sound{moved}, out[to:]...)...)
	return out
}

// Without returns the sounds whose reference is not in exclude, preserving order.
func Without(list []Sound, exclude []string) []Sound {
	if len(exclude) == 0 {
		return Clone(list)
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, ref := range exclude {
		skip[ref] = struct{}{}
	}
	out := make([]Sound, 0, len(list))
	for _, s := range list {
		if _, ok := skip[s.AudioRef]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Dedupe drops invalid sounds and later duplicates of a reference, keeping
// the first occurrence. It returns the cleaned list and how many were dropped.
func Dedupe(list []Sound) ([]Sound, int) {
	seen := make(map[string]struct{}, len(list))
	out := make([]Sound, 0, len(list))
	for _, s := range list {
		if !s.Valid() {
			continue
		}
		if _, dup := seen[s.AudioRef]; dup {
			continue
		}
		seen[s.AudioRef] = struct{}{}
		out = append(out, s)
	}
	return out, len(list) - len(out)
}
