package domain

import "errors"

// LoginStep is the client-visible position in the two-step admin login.
// The upstream API holds the authoritative state of code validity; this is
// a step indicator only.
type LoginStep int

const (
	// StepCredentials is the initial email+password entry step.
	StepCredentials LoginStep = iota
	// StepCode is the one-time code entry step.
	StepCode
	// StepAuthenticated is terminal: tokens have been issued.
	StepAuthenticated
)

func (s LoginStep) String() string {
	switch s {
	case StepCredentials:
		return "credentials"
	case StepCode:
		return "code"
	case StepAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// ErrBadTransition reports a login flow transition that is not allowed.
var ErrBadTransition = errors.New("login flow: transition not allowed")

// LoginFlow tracks the two-step login state machine. Only the email context
// survives across the steps; the password and code are never retained.
// Failures do not transition: callers only advance on success.
type LoginFlow struct {
	step  LoginStep
	email string
}

// NewLoginFlow starts a flow at the credentials step.
func NewLoginFlow() *LoginFlow {
	return &LoginFlow{step: StepCredentials}
}

func (f *LoginFlow) Step() LoginStep { return f.step }

// Email returns the email context carried into the code step.
func (f *LoginFlow) Email() string { return f.email }

// AdvanceToCode moves credentials -> code after a successful OTP send.
func (f *LoginFlow) AdvanceToCode(email string) error {
	if f.step != StepCredentials {
		return ErrBadTransition
	}
	f.step = StepCode
	f.email = email
	return nil
}

// Complete moves code -> authenticated after a successful OTP verification.
func (f *LoginFlow) Complete() error {
	if f.step != StepCode {
		return ErrBadTransition
	}
	f.step = StepAuthenticated
	return nil
}

// Restart returns the flow to the credentials step, discarding the in-flight
// email context. Only valid from the code step ("change email or password").
func (f *LoginFlow) Restart() error {
	if f.step != StepCode {
		return ErrBadTransition
	}
	f.step = StepCredentials
	f.email = ""
	return nil
}
