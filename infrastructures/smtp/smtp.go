// Package smtp delivers mail through an SMTP relay. Gmail with an app
// password is the usual deployment.
package smtp

import (
	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/repository"
	"github.com/sobadon/cyberd/internal/errutil"
	"gopkg.in/gomail.v2"
)

const senderName = "Cyber News Agent"

type sender struct {
	dialer  *gomail.Dialer
	address string
}

func New(host string, port int, address, password string) repository.Mailer {
	return &sender{
		dialer:  gomail.NewDialer(host, port, address, password),
		address: address,
	}
}

// Send delivers one message. Failures are reported to the caller
// without retry.
func (s *sender) Send(to, subject, body string) error {
	if s.address == "" {
		return errors.Wrap(errutil.ErrMailNotConfigured, "sender address is not set")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.address, senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(errutil.ErrMailSend, err.Error())
	}
	return nil
}
