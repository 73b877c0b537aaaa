package model

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}

// StrVal dereferences p, treating nil as the empty string
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
