package domain

// TokenPair holds the opaque bearer credentials minted by the upstream API.
// Once issued the session layer exclusively owns the pair for the lifetime
// of the browser session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no access token is present.
func (p TokenPair) Empty() bool { return p.AccessToken == "" }
