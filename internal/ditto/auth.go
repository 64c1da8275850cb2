package ditto

import "encoding/base64"

// Credentials hold authentication material for a Ditto instance.
//
// When Token is set, requests use Bearer authentication and the basic
// credentials are ignored. The token is an opaque string; this package never
// issues or inspects it.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// AuthHeader returns the value for the Authorization header.
//
// This is a pure function of the credentials: sourcing them (flags,
// environment, interactive prompt) is a boundary concern of the caller.
func (c Credentials) AuthHeader() string {
	if c.Token != "" {
		return "Bearer " + c.Token
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}
