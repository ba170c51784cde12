package domain

// MFAMethod is the second factor a user has enrolled.
type MFAMethod string

const (
	MFAMethodNone MFAMethod = ""
	MFAMethodOTP  MFAMethod = "otp" // authenticator app
	MFAMethodSMS  MFAMethod = "sms" // TOTP codes delivered by text message
)

func (m MFAMethod) Valid() bool {
	return m == MFAMethodOTP || m == MFAMethodSMS
}

// MFASetup is a candidate configuration handed to the user before it is
// enabled. Nothing is persisted until Enable.
type MFASetup struct {
	Secret string
	URI    string // otpauth:// URL for QR codes
}
