package buildinfo

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	if got := Current().Version; got != "v9.9.9" {
		t.Errorf("Current().Version = %q, want v9.9.9", got)
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version: v9.9.9\n") {
		t.Errorf("Template() = %q", Template())
	}
}
