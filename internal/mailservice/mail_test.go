package mailservice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendEmail(t *testing.T) {
	data := otpEmail{Email: "test@example.com", Username: "test", OTP: "123456", Minutes: 10}

	testCases := []struct {
		name     string
		parseErr error
		dialErr  error
		wantErr  bool
	}{
		{name: "success"},
		{name: "template error", parseErr: errors.New("bad template"), wantErr: true},
		{name: "dial error", dialErr: errors.New("connection refused"), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockParser := new(MockTemplate)
			mockDialer := new(MockDialer)

			mailer := Mail{
				dialer: mockDialer,
				parser: mockParser,
				sender: "BlogSphere <no-reply@blogsphere.dev>",
			}

			mockParser.On("ParseTemplate", otpTemplate, data).Return(
				bytes.NewBufferString("Subject"),
				bytes.NewBufferString("Plain body"),
				bytes.NewBufferString("<p>Html body</p>"),
				tc.parseErr,
			)
			if tc.parseErr == nil {
				mockDialer.On("DialAndSend", mock.AnythingOfType("[]*mail.Message")).Return(tc.dialErr)
			}

			err := mailer.send(data.Email, data, otpTemplate)
			assert.Equal(t, tc.wantErr, err != nil)

			mockParser.AssertExpectations(t)
			mockDialer.AssertExpectations(t)
		})
	}
}
