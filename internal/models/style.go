package models

import "sort"

// StyleCategory is one customizable aspect of a garment.
type StyleCategory string

const (
	StyleCollar    StyleCategory = "collar"
	StyleSleeve    StyleCategory = "sleeve"
	StyleFit       StyleCategory = "fit"
	StyleLength    StyleCategory = "length"
	StyleButtons   StyleCategory = "buttons"
	StyleStitching StyleCategory = "stitching"
)

// StyleChoices lists the allowed values per category, in display order.
var StyleChoices = map[StyleCategory][]string{
	StyleCollar:    {"Spread", "Point", "Button-down", "Cutaway", "Band"},
	StyleSleeve:    {"Full Sleeve", "Half Sleeve", "3/4 Sleeve", "Sleeveless"},
	StyleFit:       {"Slim Fit", "Regular Fit", "Relaxed Fit", "Tailored Fit"},
	StyleLength:    {"Regular", "Long", "Short", "Extra Long"},
	StyleButtons:   {"Standard", "Horn", "Mother of Pearl", "Metal", "Wooden"},
	StyleStitching: {"Standard", "Contrast", "Decorative", "Hand-stitched"},
}

// StyleCategories returns every category in a stable order.
func StyleCategories() []StyleCategory {
	out := make([]StyleCategory, 0, len(StyleChoices))
	for c := range StyleChoices {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidStyleOption reports whether value is allowed for category.
func ValidStyleOption(category StyleCategory, value string) bool {
	for _, v := range StyleChoices[category] {
		if v == value {
			return true
		}
	}
	return false
}

// StyleOptions maps a category to the chosen value. Categories that are not
// present are left at the tailor's standard.
type StyleOptions map[StyleCategory]string

// Clone returns an independent copy.
func (o StyleOptions) Clone() StyleOptions {
	out := make(StyleOptions, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
