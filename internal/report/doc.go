// Package report defines the extraction response and the rules that derive
// its status.
//
// A response is built exactly once per extraction call, either by Assemble
// for processed input or by Failure when nothing could be processed. Both
// guarantee the same shape: every field in FieldNames is present with a
// value (possibly null or an empty list) and a confidence in [0,1], and
// missing_fields is exactly the list of fields with empty values.
//
// # Status
//
// Status is computed by DetermineStatus from the field map alone:
//
//   - "ok" when every required field (full_name, birth_date, license_number)
//     is present and at or above its confidence threshold
//   - "partial" otherwise
//
// "failed" is only produced by Failure.
package report
