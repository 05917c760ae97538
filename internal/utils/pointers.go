package utils

import "fmt"

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", msg, err)
}
