package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationServiceSendSMS(t *testing.T) {
	sms := NewMockSMSService()
	svc := NewNotificationService(NewGatewaySMSProvider(sms), NewMockEmailProvider())

	t.Run("DeliversThroughGateway", func(t *testing.T) {
		require.NoError(t, svc.SendSMS("+989121234567", "New support ticket for Widget"))
		require.Len(t, sms.SentMessages, 1)
		assert.Equal(t, "+989121234567", sms.SentMessages[0].Recipient)
		assert.Equal(t, "New support ticket for Widget", sms.SentMessages[0].Message)
	})

	t.Run("RejectsBadMobile", func(t *testing.T) {
		assert.Error(t, svc.SendSMS("12345", "hello"))
		assert.Error(t, svc.SendSMS("0912", "hello"))
		assert.Len(t, sms.SentMessages, 1)
	})

	t.Run("NoProviderConfigured", func(t *testing.T) {
		bare := NewNotificationService(nil, nil)
		assert.Error(t, bare.SendSMS("+989121234567", "hello"))
	})
}

func TestMockSMSServiceRecordsSends(t *testing.T) {
	sms := NewMockSMSService()
	require.NoError(t, sms.SendSMS(context.Background(), "+989120000000", "staff alert"))
	require.Len(t, sms.SentMessages, 1)
	assert.False(t, sms.SentMessages[0].SentAt.IsZero())
}
