package extract

// extractPlainText returns the payload as UTF-8 text, untouched.
func extractPlainText(data []byte) (string, error) {
	return string(data), nil
}
