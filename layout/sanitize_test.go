package layout

import "testing"

func TestSanitizeSubstitutions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"em dash and curly apostrophe", "a—b’c", "a-b'c"},
		{"en and figure dash", "1–2‒3", "1-2-3"},
		{"non-breaking hyphen", "e‑mail", "e-mail"},
		{"bullet", "• item", "* item"},
		{"nbsp", "a\u00a0b", "a b"},
		{"double quotes", "“quoted”", "\"quoted\""},
		{"newlines collapse", "line one\r\nline two\n\nthree", "line one line two three"},
		{"latin-1 kept", "José São Paulo", "José São Paulo"},
		{"decomposed accents recomposed", "Jose\u0301", "Jos\u00e9"},
		{"diacritics outside cp1252 folded", "őć", "oc"},
		{"unrenderable becomes question mark", "中", "?"},
		{"ellipsis", "wait…", "wait..."},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"a—b’c",
		"\r\n\r\n",
		"mixed • “quotes” – dashes… and  spaces",
		"q\u0301 combining on a letter without precomposed form",
		"\u2014\u0301",
		"control\x01chars\ttabs",
		"中文 text",
		"José ő",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
