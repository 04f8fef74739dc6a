package common

import "time"

const (
	// RequestTimeout bounds a handler's calls to the store API and MongoDB.
	RequestTimeout = 5 * time.Second
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "sd_session"
)
