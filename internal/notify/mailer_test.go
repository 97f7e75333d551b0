package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/logger"
)

type fakeSender struct {
	input *ses.SendRawEmailInput
	err   error
}

func (f *fakeSender) SendRawEmail(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendRawEmailOutput{}, nil
}

func TestSendPacket_Success(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewMailer(sender, "noreply@btxglobal.example", logger.NewTestLogger(t))

	pdf := []byte("%PDF-1.7 fake packet body")
	err := mailer.SendPacket(context.Background(), "jane@acme.example", "Acme Corp", "BTX_Welcome_Packet_Acme_Corp_20250304.pdf", pdf)
	require.NoError(t, err)

	require.NotNil(t, sender.input)
	assert.Equal(t, "noreply@btxglobal.example", *sender.input.Source)
	assert.Equal(t, []string{"jane@acme.example"}, sender.input.Destinations)

	raw := string(sender.input.RawMessage.Data)
	assert.Contains(t, raw, "To: jane@acme.example")
	assert.Contains(t, raw, "Subject: Your BTX Welcome Packet")
	assert.Contains(t, raw, "Acme Corp")
	assert.Contains(t, raw, `filename="BTX_Welcome_Packet_Acme_Corp_20250304.pdf"`)
	assert.Contains(t, raw, "Content-Type: application/pdf")
	assert.Contains(t, raw, "Content-Transfer-Encoding: base64")
}

func TestSendPacket_Base64LineLength(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewMailer(sender, "noreply@btxglobal.example", logger.NewTestLogger(t))

	pdf := make([]byte, 4096)
	err := mailer.SendPacket(context.Background(), "jane@acme.example", "Acme Corp", "packet.pdf", pdf)
	require.NoError(t, err)

	raw := string(sender.input.RawMessage.Data)
	inAttachment := false
	for _, line := range strings.Split(raw, "\r\n") {
		if strings.HasPrefix(line, "Content-Transfer-Encoding: base64") {
			inAttachment = true
			continue
		}
		if inAttachment && strings.HasPrefix(line, "--") {
			break
		}
		if inAttachment {
			assert.LessOrEqual(t, len(line), 76)
		}
	}
}

func TestSendPacket_InvalidRecipient(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewMailer(sender, "noreply@btxglobal.example", logger.NewTestLogger(t))

	err := mailer.SendPacket(context.Background(), "not-an-address", "Acme Corp", "packet.pdf", []byte("pdf"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInputInvalid))
	assert.Nil(t, sender.input, "nothing should be sent")
}

func TestSendPacket_SESFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("throttled")}
	mailer := NewMailer(sender, "noreply@btxglobal.example", logger.NewTestLogger(t))

	err := mailer.SendPacket(context.Background(), "jane@acme.example", "Acme Corp", "packet.pdf", []byte("pdf"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEmailSendFailed))

	stdErr := apperrors.Normalize(err)
	assert.True(t, stdErr.Retryable)
}
