package services

import "testing"

func TestPresentName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"maria", "Maria"},
		{"maria jose", "Maria Jose"},
		{"Maria", "Maria"},            // already cased
		{"McGregor", "McGregor"},      // intentional inner caps
		{"de la Cruz", "de la Cruz"},  // intentional lower particles
		{"josé", "José"},
	}
	for _, c := range cases {
		if got := PresentName(c.in); got != c.want {
			t.Errorf("PresentName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
