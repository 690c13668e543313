package posts

import "strings"

// Validate resolves in into Fields. Title and body must be present and
// non-empty after trimming; author falls back to DefaultAuthor.
func Validate(in Input) (Fields, error) {
	f := Fields{
		Title:  trimmed(in.Title),
		Body:   trimmed(in.Body),
		Author: trimmed(in.Author),
	}

	errs := make(map[string]string)
	if f.Title == "" {
		errs["title"] = "Title is required"
	}
	if f.Body == "" {
		errs["body"] = "Body is required"
	}
	if len(errs) > 0 {
		return Fields{}, &ValidationError{Fields: errs}
	}

	if f.Author == "" {
		f.Author = DefaultAuthor
	}
	return f, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
