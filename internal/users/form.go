package users

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// Form field names, shared by the HTML form and the CLI flags.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldCountry   = "country"
	FieldState     = "state"
	FieldRole      = "role"
	FieldBilling   = "billing"
)

const (
	nameMinLength = 6
	nameMaxLength = 20

	msgRequired      = "Please input field"
	msgNameTooShort  = "Please input value minium 6"
	msgNameTooLong   = "Please input value maxium 20"
	msgEmailFormat   = "Email format wrong. Ex: tony@gmail.com"
	msgInvalidOption = "Please choose a valid option"
)

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|.(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// Form carries the add/edit form values.
type Form struct {
	FirstName string
	LastName  string
	Email     string
	Address   string
	City      string
	Country   string
	State     string
	Role      string
	Billing   bool
}

// FieldErrors maps a field name to the first rule it failed.
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// Normalize trims surrounding whitespace from every text field.
func (f Form) Normalize() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.Country = strings.TrimSpace(f.Country)
	f.State = strings.TrimSpace(f.State)
	f.Role = strings.ToLower(strings.TrimSpace(f.Role))
	return f
}

// Validate checks the normalized form. An empty result means the form is valid.
func (f Form) Validate() FieldErrors {
	f = f.Normalize()
	errs := FieldErrors{}

	validateName(errs, FieldFirstName, f.FirstName)
	validateName(errs, FieldLastName, f.LastName)

	switch {
	case f.Email == "":
		errs[FieldEmail] = msgRequired
	case !validEmail(f.Email):
		errs[FieldEmail] = msgEmailFormat
	}

	if f.Address == "" {
		errs[FieldAddress] = msgRequired
	}
	if f.City == "" {
		errs[FieldCity] = msgRequired
	}

	validateOption(errs, FieldCountry, f.Country, CountryOptions(), true)
	validateOption(errs, FieldState, f.State, stateOptions, true)
	validateOption(errs, FieldRole, f.Role, roleOptions, false)

	return errs
}

// Apply copies every form field into u.
func (f Form) Apply(u *User) {
	f = f.Normalize()
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email
	u.Address = f.Address
	u.City = f.City
	u.Country = f.Country
	u.State = f.State
	u.Role = f.Role
	u.Billing = f.Billing
}

// FormFromUser populates every form field from an existing record.
func FormFromUser(u User) Form {
	first := u.FirstName
	last := u.LastName
	if strings.TrimSpace(first) == "" && strings.TrimSpace(last) == "" && u.FullName != "" {
		first, last, _ = strings.Cut(strings.TrimSpace(u.FullName), " ")
	}
	return Form{
		FirstName: first,
		LastName:  last,
		Email:     u.Email,
		Address:   u.Address,
		City:      u.City,
		Country:   u.Country,
		State:     u.State,
		Role:      u.Role,
		Billing:   u.Billing,
	}.Normalize()
}

func validateName(errs FieldErrors, field, value string) {
	n := utf8.RuneCountInString(value)
	switch {
	case value == "":
		errs[field] = msgRequired
	case n < nameMinLength:
		errs[field] = msgNameTooShort
	case n > nameMaxLength:
		errs[field] = msgNameTooLong
	}
}

func validateOption(errs FieldErrors, field, value string, options []Option, required bool) {
	if value == "" {
		if required {
			errs[field] = msgRequired
		}
		return
	}
	if !hasOption(options, value) {
		errs[field] = msgInvalidOption
	}
}

func validEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if strings.HasPrefix(domain, "[") {
		return true
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(domain)); err != nil {
		return false
	}
	return true
}
