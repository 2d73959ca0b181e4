// Package mail composes personalized campaign messages and delivers them
// through an SMTP relay with gomail, one session per message, bounded by a
// timeout. Delivery failures are classified so a campaign summary can tell
// authentication problems from timeouts and relay rejections.
package mail
