package notify

import (
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent    []tgbotapi.MessageConfig
	failIDs map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	if f.failIDs[msg.ChatID] {
		return tgbotapi.Message{}, fmt.Errorf("forbidden")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func TestSendAllAdmins(t *testing.T) {
	fake := &fakeSender{}
	n := &Notifier{api: fake, adminIDs: []int64{111, 222}}

	if err := n.Send("bot updated to v6.2.0"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(fake.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(fake.sent))
	}
	if fake.sent[0].ChatID != 111 || fake.sent[1].ChatID != 222 {
		t.Errorf("chat IDs = %d, %d, want 111, 222", fake.sent[0].ChatID, fake.sent[1].ChatID)
	}
	if fake.sent[0].Text != "bot updated to v6.2.0" {
		t.Errorf("text = %q, want the notice", fake.sent[0].Text)
	}
}

func TestSendContinuesAfterFailure(t *testing.T) {
	fake := &fakeSender{failIDs: map[int64]bool{111: true}}
	n := &Notifier{api: fake, adminIDs: []int64{111, 222}}

	err := n.Send("notice")
	if err == nil {
		t.Fatal("Send() error = nil, want delivery failure")
	}
	if len(fake.sent) != 1 || fake.sent[0].ChatID != 222 {
		t.Errorf("remaining admin not attempted after failure: sent = %v", fake.sent)
	}
}
