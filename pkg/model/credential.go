package model

// Credential maps a username to its password verification token.
// Token is the output of a one-way transform and never the plaintext.
type Credential struct {
	Username string
	Token    string
}
