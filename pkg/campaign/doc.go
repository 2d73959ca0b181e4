// Package campaign drives one email campaign: it loads the contacts, shows a
// preview, asks for confirmation and then sends one message per contact,
// strictly in order and with a pause between two sends. Every attempted
// contact yields exactly one Outcome; the run ends with a Summary and a Status
// that maps onto the process exit code.
package campaign
