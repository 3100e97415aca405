package template

import (
	"strings"
	"time"
)

// Recognized placeholder tokens.
const (
	PlaceholderPatientName    = "{{patientName}}"
	PlaceholderNextOfKinName  = "{{nextOfKinName}}"
	PlaceholderNextOfKinPhone = "{{nextOfKinPhone}}"
	PlaceholderBabyGender     = "{{babyGender}}"
	PlaceholderDeliveryTime   = "{{deliveryTime}}"
)

// deliveryTimeFormat is how timestamps appear in outbound messages.
const deliveryTimeFormat = "Jan 2, 2006 3:04 PM"

// RenderData carries the field values substituted into a template.
// DeliveryTime defaults to the current time when zero.
type RenderData struct {
	PatientName    string
	NextOfKinName  string
	NextOfKinPhone string
	BabyGender     string
	DeliveryTime   time.Time
}

// Render substitutes every occurrence of each recognized placeholder with
// the corresponding value. Unrecognized placeholders are left verbatim.
// Rendering the same content and data twice produces identical output.
func Render(content string, data RenderData) string {
	deliveryTime := data.DeliveryTime
	if deliveryTime.IsZero() {
		deliveryTime = time.Now()
	}

	replacer := strings.NewReplacer(
		PlaceholderPatientName, data.PatientName,
		PlaceholderNextOfKinName, data.NextOfKinName,
		PlaceholderNextOfKinPhone, data.NextOfKinPhone,
		PlaceholderBabyGender, data.BabyGender,
		PlaceholderDeliveryTime, deliveryTime.Format(deliveryTimeFormat),
	)
	return replacer.Replace(content)
}
