package pii

import "regexp"

// PIIType represents the kinds of Indian PII the redactor masks.
type PIIType string

const (
	PIITypePAN     PIIType = "pan"
	PIITypeAadhaar PIIType = "aadhaar"
)

// Redaction tokens. These are part of the output contract for downstream
// report consumers; do not change them casually.
const (
	PANMask     = "[REDACTED_PAN]"
	AadhaarMask = "[REDACTED_UID]"
)

var (
	// PAN card format: 5 letters, 4 digits, 1 letter (e.g. ABCDE1234F)
	panPattern = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)

	// Aadhaar format: three space-separated groups of 4 digits
	aadhaarPattern = regexp.MustCompile(`\d{4}\s\d{4}\s\d{4}`)
)

// MaskPAN replaces every PAN-shaped substring with the PAN redaction token.
func MaskPAN(text string) string {
	return panPattern.ReplaceAllString(text, PANMask)
}

// MaskAadhaar replaces every Aadhaar-shaped substring with the UID redaction token.
func MaskAadhaar(text string) string {
	return aadhaarPattern.ReplaceAllString(text, AadhaarMask)
}

// MaskAll applies every mask. The patterns do not overlap, so ordering only
// matters in that both must run.
func MaskAll(text string) string {
	return MaskAadhaar(MaskPAN(text))
}

// Contains reports whether the text matches any known PII pattern.
func Contains(text string) bool {
	return panPattern.MatchString(text) || aadhaarPattern.MatchString(text)
}
