package cli

import (
	"testing"
)

func FuzzValidateHighlight(f *testing.F) {
	f.Add("IN-KL")
	f.Add("R01")
	f.Add("")
	f.Add("IN KL")
	f.Add("-")
	f.Add("<script>")
	f.Add("IN-KL\n")

	f.Fuzz(func(t *testing.T, id string) {
		if err := validateHighlight(id); err == nil && id != "" {
			if !regionIDPattern.MatchString(id) {
				t.Errorf("accepted %q which does not match the id pattern", id)
			}
		}
	})
}

func FuzzIsURL(f *testing.F) {
	f.Add("http://example.com/india.json")
	f.Add("https://example.com/india.svg")
	f.Add("/tmp/india.json")
	f.Add("")
	f.Add("ftp://example.com")

	f.Fuzz(func(t *testing.T, s string) {
		// Should not panic
		isURL(s)
	})
}
