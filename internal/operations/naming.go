package operations

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Stem returns the base name of a path or object name without its last
// extension. Both '/' and '\' count as separators.
func Stem(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputName returns the name of the single-page document for pageNumber
// (1-based) of the source called sourceName, e.g. report.pdf page 3 is
// report_Page_3.pdf.
func OutputName(sourceName string, pageNumber int) string {
	return fmt.Sprintf("%s_Page_%d.pdf", Stem(sourceName), pageNumber)
}
