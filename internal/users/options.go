package users

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Option is one entry of a select field.
type Option struct {
	Label string
	Value string
}

var (
	countryCodes = []string{"US", "CA", "VN"}

	stateOptions = []Option{
		{Label: "Phu Nhuan", Value: "Phu Nhuan"},
		{Label: "Q1", Value: "Q1"},
		{Label: "Q3", Value: "Q3"},
	}

	roleOptions = []Option{
		{Label: "Admin", Value: "admin"},
		{Label: "Operator", Value: "operator"},
		{Label: "Member", Value: "member"},
	}
)

// CountryOptions returns the selectable countries labelled with their English names.
func CountryOptions() []Option {
	namer := display.English.Regions()
	out := make([]Option, 0, len(countryCodes))
	for _, code := range countryCodes {
		label := code
		if region, err := language.ParseRegion(code); err == nil {
			if name := namer.Name(region); name != "" {
				label = name
			}
		}
		out = append(out, Option{Label: label, Value: code})
	}
	return out
}

func StateOptions() []Option {
	return append([]Option(nil), stateOptions...)
}

func RoleOptions() []Option {
	return append([]Option(nil), roleOptions...)
}

func hasOption(options []Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
