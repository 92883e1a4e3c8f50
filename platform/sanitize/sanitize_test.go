package sanitize

import "testing"

func TestStripHTMLRemovesEncodedTags(t *testing.T) {
	got := StripHTML("  hello &lt;script&gt;alert(1)&lt;/script&gt; <b>world</b> ")
	if got != "hello alert(1) world" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestLineCollapsesWhitespace(t *testing.T) {
	got := Line(" Acme \t  Corp\n Inc ")
	if got != "Acme Corp Inc" {
		t.Fatalf("expected %q, got %q", "Acme Corp Inc", got)
	}
}
