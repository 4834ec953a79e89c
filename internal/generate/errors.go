package generate

import (
	"fmt"
	"strings"
)

// MissingTemplatesError lists every template of the active binding that
// does not exist on disk
type MissingTemplatesError struct {
	TemplateDir string
	Paths       []string
}

func (e *MissingTemplatesError) Error() string {
	return fmt.Sprintf("%d template(s) missing from %s: %s", len(e.Paths), e.TemplateDir, strings.Join(e.Paths, ", "))
}
