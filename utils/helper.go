package utils

// NonEmptyStringPtr returns nil for blank strings.
func NonEmptyStringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
