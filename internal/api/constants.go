package api

// sessionCookieName is the HTTP-only cookie carrying the session token.
const sessionCookieName = "inkwell_session"
