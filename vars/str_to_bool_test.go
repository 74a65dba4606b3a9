package vars

import "testing"

func TestStrToBool(t *testing.T) {
	for str, want := range map[string]bool{
		"true": true,
		"T":    true,
		"yes":  true,
		"y":    true,
		"On":   true,
		"1":    true,
		" y ":  true,
		"no":   false,
		"off":  false,
		"0":    false,
		"":     false,
		"2":    false,
	} {
		if got := StrToBool(str); got != want {
			t.Errorf("%q: got %v", str, got)
		}
	}
}
