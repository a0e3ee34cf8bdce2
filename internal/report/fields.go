package report

// Response field names, in response order.
const (
	FieldFullName        = "full_name"
	FieldBirthDate       = "birth_date"
	FieldLicenseNumber   = "license_number"
	FieldLicenseIssuedBy = "license_issued_by"
	FieldDrivingSince    = "driving_since"
	FieldCategories      = "categories"
	FieldSpecialMarks    = "special_marks"
)

// FieldNames lists every response field in response order.
var FieldNames = []string{
	FieldFullName,
	FieldBirthDate,
	FieldLicenseNumber,
	FieldLicenseIssuedBy,
	FieldDrivingSince,
	FieldCategories,
	FieldSpecialMarks,
}

// RequiredFields are the fields that decide between "ok" and "partial".
var RequiredFields = []string{
	FieldFullName,
	FieldBirthDate,
	FieldLicenseNumber,
}

// defaultValue returns the empty value for a field: an empty list for
// categories and nil for everything else.
func defaultValue(name string) any {
	if name == FieldCategories {
		return []string{}
	}
	return nil
}

// BuildFields fills every response field from parsed, substituting defaults
// for anything absent. Confidences are clamped to [0,1], and empty values
// always carry their typed default so JSON renders null or [].
func BuildFields(parsed Fields) Fields {
	fields := make(Fields, len(FieldNames))
	for _, name := range FieldNames {
		f, ok := parsed[name]
		if !ok || f.Empty() {
			conf := 0.0
			if ok {
				conf = f.Confidence
			}
			f = Field{Value: defaultValue(name), Confidence: conf}
		}
		f.Confidence = clampUnit(f.Confidence)
		fields[name] = f
	}
	return fields
}

// MissingFields returns, in response order, every field whose value is empty.
func MissingFields(fields Fields) []string {
	missing := make([]string, 0, len(FieldNames))
	for _, name := range FieldNames {
		if fields[name].Empty() {
			missing = append(missing, name)
		}
	}
	return missing
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
