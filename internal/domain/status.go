package domain

func containsStatus[S comparable](allowed []S, s S) bool {
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}
