package report

// DocumentType identifies the only document layout family this module reads.
const DocumentType = "ru_driver_license"

// Status is the terminal outcome of one extraction call.
type Status string

// Extraction statuses.
const (
	// StatusOK means every required field is present and confident.
	StatusOK Status = "ok"

	// StatusPartial means the images were processed but at least one required
	// field is missing or below its confidence threshold.
	StatusPartial Status = "partial"

	// StatusFailed means nothing could be processed: no images, no decodable
	// images, no recognized text, or an unavailable recognition engine.
	StatusFailed Status = "failed"
)

// Field is one extracted value with its confidence in [0,1].
//
// Value is nil, a string, or a []string (categories only).
type Field struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Empty reports whether the field value is null, an empty string or an empty list.
func (f Field) Empty() bool {
	switch v := f.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// String returns the value as a string, or "" when it is not a string.
func (f Field) String() string {
	s, _ := f.Value.(string)
	return s
}

// Fields maps a response field name to its result.
type Fields map[string]Field

// RegionText is the raw text recognized for one region together with its
// (unadjusted) recognition confidence.
type RegionText struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Image references one stored upload.
type Image struct {
	// Role is "front" or "back".
	Role string `json:"role"`

	// StorageURL is nil when upload storage is disabled or failed.
	StorageURL *string `json:"storage_url"`

	// ContentHash is the hex SHA-256 of the original upload bytes.
	ContentHash string `json:"content_hash"`
}

// Shift is the calibration offset applied to a template.
type Shift struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Anchor is one detected printed field-number marker.
type Anchor struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// SideMeta records how one side was aligned and calibrated.
type SideMeta struct {
	Alignment   string            `json:"alignment"`
	Attempts    []string          `json:"attempts,omitempty"`
	Orientation int               `json:"orientation,omitempty"`
	Template    string            `json:"template,omitempty"`
	AnchorShift *Shift            `json:"anchor_shift,omitempty"`
	Anchors     map[string]Anchor `json:"anchors,omitempty"`
}

// Debug carries diagnostic output. It is populated only when debug mode is on.
type Debug struct {
	FrontRaw  map[string]RegionText `json:"front_raw"`
	BackRaw   map[string]RegionText `json:"back_raw"`
	RawText   string                `json:"raw_text"`
	FrontMeta *SideMeta             `json:"front_meta,omitempty"`
	BackMeta  *SideMeta             `json:"back_meta,omitempty"`
}

// EmptyDebug returns the debug block used when diagnostics are off.
func EmptyDebug() Debug {
	return Debug{
		FrontRaw: map[string]RegionText{},
		BackRaw:  map[string]RegionText{},
	}
}

// Response is the structured result of one extraction call.
type Response struct {
	RequestID     string   `json:"request_id"`
	DocumentType  string   `json:"document_type"`
	Status        Status   `json:"status"`
	Fields        Fields   `json:"fields"`
	MissingFields []string `json:"missing_fields"`
	Warnings      []string `json:"warnings"`
	Images        []Image  `json:"images"`
	Debug         Debug    `json:"debug"`
}
