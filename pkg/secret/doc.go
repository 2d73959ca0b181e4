// Package secret resolves the SMTP credential of a campaign from sources kept
// outside the campaign file: an environment variable, a file (for example a
// mounted secret), or the operating system keyring.
package secret
