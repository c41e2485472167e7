// Package mail holds the rendered form of an outgoing message.
package mail

type Email struct {
	Subject string
	Body    string
}
