package core

// LoginMethod identifies how a login request authenticates. The method is
// resolved once from the request "type" string at the HTTP boundary; the
// rest of the flow switches on the variant instead of re-sniffing strings.
type LoginMethod int

const (
	MethodUnknown LoginMethod = iota
	MethodPassword
	MethodToken
	MethodApplicationService
	MethodWalletSignature
)

// Wire values for the sign-in method type field.
const (
	TypePassword           = "m.login.password"
	TypeToken              = "m.login.token"
	TypeApplicationService = "m.login.application_service"
	TypeWalletSignature    = "m.login.solana.signature"
)

// ParseLoginMethod resolves a request type string to a LoginMethod.
// Unrecognized strings map to MethodUnknown.
func ParseLoginMethod(s string) LoginMethod {
	switch s {
	case TypePassword:
		return MethodPassword
	case TypeToken:
		return MethodToken
	case TypeApplicationService:
		return MethodApplicationService
	case TypeWalletSignature:
		return MethodWalletSignature
	default:
		return MethodUnknown
	}
}

// String returns the wire value for the method.
func (m LoginMethod) String() string {
	switch m {
	case MethodPassword:
		return TypePassword
	case MethodToken:
		return TypeToken
	case MethodApplicationService:
		return TypeApplicationService
	case MethodWalletSignature:
		return TypeWalletSignature
	default:
		return "unknown"
	}
}

// Session is an authenticated device session issued after a successful
// login. The access token is opaque; its validity is checked against the
// account store and the revocation store.
type Session struct {
	UserID      string // Canonical id of the account
	DeviceID    string // Device the token is bound to
	AccessToken string // Opaque bearer credential
}
