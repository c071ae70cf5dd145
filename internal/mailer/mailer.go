package mailer

import (
	"github.com/pkg/errors"
	mail "gopkg.in/mail.v2"
)

type Client struct {
	dialer *mail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *Client {
	return &Client{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (c *Client) Send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := c.dialer.DialAndSend(m); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}
