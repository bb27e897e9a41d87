// Package redact provides privacy filtering for sensitive data.
package redact

import "strings"

// DefaultHeaderDenylist names the HTTP headers whose values are replaced
// with RedactedValue in captured CDP traffic (Network.requestWillBeSent/
// Network.responseReceived headers stored on a NetworkEntry) before they
// reach the network log API.
var DefaultHeaderDenylist = []string{
	"cookie",
	"set-cookie",
	"authorization",
	"proxy-authorization",
	"x-api-key",
	"x-auth-token",
	"x-csrf-token",
	"x-xsrf-token",
}

// DefaultBodyFieldDenylist names the JSON field names redacted out of
// action log error strings and any other JSON payload this package is
// asked to scrub (e.g. a page's extract/evaluate result that happens to
// echo back a credential the automated page was filling in).
var DefaultBodyFieldDenylist = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"accesstoken",
	"access_token",
	"refreshtoken",
	"refresh_token",
	"private_key",
	"privatekey",
	"client_secret",
	"clientsecret",
	"credential",
	"credentials",
	"auth",
	"ssn",
	"social_security",
	"credit_card",
	"creditcard",
	"card_number",
	"cardnumber",
	"cvv",
	"pin",
}

// matchHeaderName checks if a header name matches a pattern (case-insensitive).
func matchHeaderName(actual, pattern string) bool {
	return strings.EqualFold(actual, pattern)
}

// matchBodyFieldName checks if a JSON field name matches a pattern (case-insensitive).
func matchBodyFieldName(actual, pattern string) bool {
	actualLower := strings.ToLower(actual)
	patternLower := strings.ToLower(pattern)

	// Exact match.
	if actualLower == patternLower {
		return true
	}

	// Check if the field name contains the pattern as a substring.
	// This catches variations like "user_password", "passwordHash", etc.
	return strings.Contains(actualLower, patternLower)
}
