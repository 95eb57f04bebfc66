package admin

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DoctorNoteLimit caps the length of a doctor's note, in characters.
const DoctorNoteLimit = 500

// MinPasswordLength is the auth provider's own minimum.
const MinPasswordLength = 6

var timeOfDayRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var (
	ErrNoTimes       = errors.New("no times of day given")
	ErrBadTimeOfDay  = errors.New("time of day is not HH:MM")
	ErrPasswordMatch = errors.New("passwords do not match")
)

const (
	MsgNoTimes       = "En az bir saat girilmelidir."
	MsgBadTimeOfDay  = "Saatler SS:DD biçiminde olmalıdır."
	MsgPasswordMatch = "Şifreler eşleşmiyor."
)

// localize returns the user-facing text for one validation failure.
func localize(err error) string {
	switch {
	case errors.Is(err, ErrNoTimes):
		return MsgNoTimes
	case errors.Is(err, ErrBadTimeOfDay):
		return MsgBadTimeOfDay
	case errors.Is(err, ErrPasswordMatch):
		return MsgPasswordMatch
	}
	return err.Error()
}

func validateTimes(value interface{}) error {
	times, _ := value.([]string)
	if len(times) == 0 {
		return ErrNoTimes
	}
	for _, t := range times {
		if !timeOfDayRE.MatchString(t) {
			return ErrBadTimeOfDay
		}
	}
	return nil
}

// Validate checks a cleaned medicine form.
func (f MedicineForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("İlaç adı zorunludur.")),
		validation.Field(&f.Dose, validation.Required.Error("Doz zorunludur.")),
		validation.Field(&f.Times, validation.By(validateTimes)),
		validation.Field(&f.TotalQuantity,
			validation.Required.Error("Toplam adet zorunludur."),
			is.Digit.Error("Toplam adet negatif olmayan bir tam sayı olmalıdır."),
			validation.Length(1, 9).Error("Toplam adet çok büyük.")),
		validation.Field(&f.RemainingQuantity,
			validation.Required.Error("Kalan adet zorunludur."),
			is.Digit.Error("Kalan adet negatif olmayan bir tam sayı olmalıdır."),
			validation.Length(1, 9).Error("Kalan adet çok büyük.")),
		validation.Field(&f.DoctorNote, validation.RuneLength(0, DoctorNoteLimit).Error("Doktor notu en fazla 500 karakter olabilir.")),
	)
}

// Registration is the self-service sign-up form.
type Registration struct {
	Name     string
	Email    string
	Password string
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Ad Soyad zorunludur.")),
		validation.Field(&r.Email, validation.Required.Error("E-posta zorunludur."), is.EmailFormat.Error("Geçerli bir e-posta adresi girin.")),
		validation.Field(&r.Password,
			validation.Required.Error("Şifre zorunludur."),
			validation.RuneLength(MinPasswordLength, 0).Error("Şifre en az 6 karakter olmalıdır.")),
	)
}

// ProfileUpdate is the settings form.  An empty Password leaves the password
// unchanged.
type ProfileUpdate struct {
	DisplayName     string
	Password        string
	PasswordConfirm string
}

func (p ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DisplayName, validation.Required.Error("Ad Soyad zorunludur.")),
		validation.Field(&p.Password, validation.RuneLength(MinPasswordLength, 0).Error("Şifre en az 6 karakter olmalıdır.")),
		validation.Field(&p.PasswordConfirm, validation.By(func(value interface{}) error {
			if confirm, _ := value.(string); confirm != p.Password {
				return ErrPasswordMatch
			}
			return nil
		})),
	)
}

// ValidationMessage flattens validation errors into a single user-facing
// string, ordered by field.
func ValidationMessage(err error) string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return localize(err)
	}

	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, localize(verrs[k]))
	}
	return strings.Join(msgs, " ")
}
