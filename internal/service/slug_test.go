package service

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Sea View Condo", "sea-view-condo"},
		{"punctuation collapses", "Hello,   World!", "hello-world"},
		{"accents are stripped", "Café Déjà Vu", "cafe-deja-vu"},
		{"digits survive", "2 Bed / 1 Bath", "2-bed-1-bath"},
		{"leading and trailing noise", "  --Lovely House--  ", "lovely-house"},
		{"already a slug", "lovely-house", "lovely-house"},
		{"nothing usable", "!!! ???", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.title); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}
