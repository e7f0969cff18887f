package mail

import (
	"strings"
	"testing"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestBuildReplyRaw(t *testing.T) {
	msg := &core.Message{
		Sender:    "Alice <alice@x.com>",
		Subject:   "Project update",
		MessageID: "<abc123@mail.x.com>",
	}

	raw := buildReplyRaw("me@y.com", msg, "Thanks, looks good.")

	assert.Contains(t, raw, "From: me@y.com\r\n")
	assert.Contains(t, raw, "To: Alice <alice@x.com>\r\n")
	assert.Contains(t, raw, "Subject: Re: Project update\r\n")
	assert.Contains(t, raw, "In-Reply-To: <abc123@mail.x.com>\r\n")
	assert.Contains(t, raw, "References: <abc123@mail.x.com>\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nThanks, looks good."))
}

func TestBuildReplyRaw_ExistingRePrefix(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{name: "plain subject", subject: "Hello", want: "Subject: Re: Hello\r\n"},
		{name: "already a reply", subject: "Re: Hello", want: "Subject: Re: Hello\r\n"},
		{name: "lowercase re", subject: "re: Hello", want: "Subject: re: Hello\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildReplyRaw("me@y.com", &core.Message{Sender: "a@x.com", Subject: tt.subject}, "body")
			assert.Contains(t, raw, tt.want)
		})
	}
}

func TestBuildReplyRaw_NoMessageID(t *testing.T) {
	raw := buildReplyRaw("me@y.com", &core.Message{Sender: "a@x.com", Subject: "Hi"}, "body")

	assert.NotContains(t, raw, "In-Reply-To:")
	assert.NotContains(t, raw, "References:")
}
