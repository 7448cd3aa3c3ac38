/*
Copyright © 2025 Logicos Software

tags.go defines the tag numbers an enclosing envelope layer assigns to
SSH objects.
*/
package sshkey

// Envelope tags.
const (
	TagPrivateKey  = 40800
	TagPublicKey   = 40801
	TagSignature   = 40802
	TagCertificate = 40803 // reserved
)
