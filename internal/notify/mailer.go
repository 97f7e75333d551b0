// Package notify delivers a filled welcome packet by email through SES.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/logger"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RawEmailSender is the SES surface the mailer needs.
type RawEmailSender interface {
	SendRawEmail(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error)
}

type Mailer struct {
	sender RawEmailSender
	from   string
	logger logger.Logger
}

func NewMailer(sender RawEmailSender, from string, log logger.Logger) *Mailer {
	return &Mailer{
		sender: sender,
		from:   from,
		logger: log.WithFields(map[string]interface{}{"component": "mailer"}),
	}
}

// SendPacket emails the filled packet as a PDF attachment.
func (m *Mailer) SendPacket(ctx context.Context, to, companyName, filename string, pdf []byte) error {
	if !emailRegex.MatchString(to) {
		return apperrors.NewInputError(fmt.Sprintf("invalid recipient email address: %s", to))
	}

	raw := buildRawMessage(m.from, to, companyName, filename, pdf)

	_, err := m.sender.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       &m.from,
		Destinations: []string{to},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return apperrors.NewEmailSendError(err)
	}

	m.logger.Info("packet emailed", map[string]interface{}{
		"to":       to,
		"filename": filename,
	})
	return nil
}

// buildRawMessage assembles a multipart MIME message with the PDF attached.
func buildRawMessage(from, to, companyName, filename string, pdf []byte) []byte {
	boundary := fmt.Sprintf("packet-%d", time.Now().UnixNano())

	var buf bytes.Buffer
	write := func(format string, args ...interface{}) {
		fmt.Fprintf(&buf, format, args...)
	}

	write("From: %s\r\n", from)
	write("To: %s\r\n", to)
	write("Subject: Your BTX Welcome Packet\r\n")
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=utf-8\r\n")
	write("\r\n")
	write("Hello,\r\n\r\nPlease find the welcome packet for %s attached.\r\n\r\nBTX Global Logistics\r\n", companyName)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: application/pdf\r\n")
	write("Content-Disposition: attachment; filename=%q\r\n", filename)
	write("Content-Transfer-Encoding: base64\r\n")
	write("\r\n")

	encoded := base64.StdEncoding.EncodeToString(pdf)
	// Wrap base64 at 76 characters per RFC 2045.
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	write("\r\n")
	write("--%s--\r\n", boundary)

	return buf.Bytes()
}
