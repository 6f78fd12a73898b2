package mysql

import (
	"strings"

	scans "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// scansNotFound is the shared not-found sentinel; the HTTP layer maps it to 404.
var scansNotFound = scans.ErrNotFound

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
