package booking

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
)

var allowedVaccinationExt = map[string]bool{"pdf": true, "png": true, "jpg": true, "jpeg": true}

// Validate reports every missing or malformed field at once, keyed by form field.
func Validate(f Form) error {
	errs := map[string]string{}
	required := []struct {
		field, value, msg string
	}{
		{"room_name", f.RoomName, "Please select the room from the Dog, Cat, Rabbit, or Cage page."},
		{"checkin_date", f.CheckIn, "Please select a check-in date."},
		{"checkout_date", f.CheckOut, "Please select a checkout date."},
		{"owner_name", f.OwnerName, "Please fill in owner name."},
		{"pet_name", f.PetName, "Please fill in pet name."},
		{"email", f.Email, "Please fill in your email."},
		{"contact", f.Contact, "Please fill in your contact number."},
		{"category", f.Category, "Please select one of the animal categories."},
		{"food_category", f.FoodCategory, "Please select a food category."},
		{"vaccination_file", f.VaccinationFile, "Please upload a file."},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.msg
		}
	}

	if f.VaccinationFile != "" && !allowedVaccinationExt[fileExt(f.VaccinationFile)] {
		errs["vaccination_file"] = "Please upload a file with one of the following file types: PDF, PNG, JPG, JPEG."
	}
	if f.CheckIn != "" {
		if _, err := time.Parse(DateLayout, f.CheckIn); err != nil {
			errs["checkin_date"] = "Check-in date must look like 2024-05-01."
		}
	}
	if f.CheckOut != "" {
		if _, err := time.Parse(DateLayout, f.CheckOut); err != nil {
			errs["checkout_date"] = "Checkout date must look like 2024-05-01."
		}
	}

	if len(errs) > 0 {
		return apperr.Validation("booking.validate", errs)
	}
	return nil
}

func fileExt(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
