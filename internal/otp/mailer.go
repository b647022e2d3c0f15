package otp

import "log"

// LogMailer writes the code to the server log instead of sending mail.
// It stands in wherever a real mail provider is not configured.
type LogMailer struct{}

func (LogMailer) SendOTP(email, code string) error {
	log.Printf("OTP for %s: %s (valid for %v)", email, code, Lifetime)
	return nil
}
