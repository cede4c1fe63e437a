// Package services – display-name presentation helpers.
package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameCaser = cases.Title(language.Und)

// PresentName normalizes a stored display name for listings. Names that were
// registered entirely in lower case (a common pattern from mobile sign-up
// forms) are title-cased; anything with intentional casing ("McGregor",
// "de la Cruz" typed that way) passes through unchanged.
func PresentName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	for _, r := range name {
		if unicode.IsUpper(r) {
			return name
		}
	}
	return nameCaser.String(name)
}
