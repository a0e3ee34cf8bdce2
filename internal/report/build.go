package report

// Assemble builds a processed (non-failed) response. Status and
// missing_fields are derived from parsed here and nowhere else; a
// low-confidence warning is appended when any required field falls below
// its threshold.
func Assemble(requestID string, parsed Fields, policy StatusPolicy, warnings []string, images []Image, debug Debug) Response {
	fields := BuildFields(parsed)
	eval := DetermineStatus(fields, policy)

	out := append([]string{}, warnings...)
	if len(eval.LowConfidence) > 0 {
		out = append(out, LowConfidenceWarning(eval.LowConfidence))
	}

	return Response{
		RequestID:     requestID,
		DocumentType:  DocumentType,
		Status:        eval.Status,
		Fields:        fields,
		MissingFields: MissingFields(fields),
		Warnings:      out,
		Images:        nonNilImages(images),
		Debug:         debug,
	}
}

// Failure builds a failed response: every field empty, every field listed
// as missing, and reason appended to the warnings collected so far.
func Failure(requestID, reason string, warnings []string, images []Image) Response {
	out := append([]string{}, warnings...)
	out = append(out, reason)

	return Response{
		RequestID:     requestID,
		DocumentType:  DocumentType,
		Status:        StatusFailed,
		Fields:        BuildFields(nil),
		MissingFields: append([]string(nil), FieldNames...),
		Warnings:      out,
		Images:        nonNilImages(images),
		Debug:         EmptyDebug(),
	}
}

func nonNilImages(images []Image) []Image {
	if images == nil {
		return []Image{}
	}
	return images
}
