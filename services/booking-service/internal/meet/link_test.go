package meet

import (
	"strings"
	"testing"
)

func TestNewLink(t *testing.T) {
	link := NewLink("")
	if !strings.HasPrefix(link, DefaultBaseURL+"/") {
		t.Fatalf("unexpected link %q", link)
	}
	token := strings.TrimPrefix(link, DefaultBaseURL+"/")
	if len(token) < 12 {
		t.Fatalf("token too short: %q", token)
	}

	custom := NewLink("https://meet.example.com/")
	if !strings.HasPrefix(custom, "https://meet.example.com/") {
		t.Fatalf("base url not honored: %q", custom)
	}
	if strings.Contains(strings.TrimPrefix(custom, "https://"), "//") {
		t.Fatalf("double slash in link: %q", custom)
	}

	if NewLink("") == NewLink("") {
		t.Fatal("links must be unique")
	}
}
