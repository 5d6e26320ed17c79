package session

import "strings"

// DisplayName strips the final extension from an uploaded file name.
// A name without a dot is returned unchanged.
func DisplayName(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return fileName
	}
	return fileName[:idx]
}

// OutputName is the download name for an exported document
func OutputName(displayName string) string {
	return displayName + "(rotated).pdf"
}
