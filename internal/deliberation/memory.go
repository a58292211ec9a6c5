package deliberation

// TrimMemories returns a copy of the state with every participant's memory
// reduced to its most recent max entries. A max of 0 or less disables
// trimming. The transcript and shared utterance log are never trimmed.
func (s State) TrimMemories(max int) State {
	if max <= 0 {
		return s
	}

	trimmed := false
	for _, mem := range s.Memories {
		if len(mem) > max {
			trimmed = true
			break
		}
	}
	if !trimmed {
		return s
	}

	out := s.Clone()
	for id, mem := range out.Memories {
		if len(mem) > max {
			out.Memories[id] = mem[len(mem)-max:]
		}
	}
	return out
}
