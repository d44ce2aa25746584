package util

// GenerateCSRFToken returns 32 random bytes as unpadded base64url.
func GenerateCSRFToken() (string, error) {
	return RandomURLToken(32)
}

// VerifyCSRFToken compares the submitted form value with the cookie value
// (double-submit). Empty values never verify.
func VerifyCSRFToken(submitted, cookie string) bool {
	if submitted == "" || cookie == "" {
		return false
	}
	return ConstantTimeEqual(submitted, cookie)
}
