package feedback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsOpenAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	sess := Session{StartTime: start, EndTime: end, GracePeriod: 15 * time.Minute}

	tests := []struct {
		name string
		sess Session
		at   time.Time
		want bool
	}{
		{name: "before start", sess: sess, at: start.Add(-time.Second), want: false},
		{name: "at start", sess: sess, at: start, want: true},
		{name: "running", sess: sess, at: start.Add(time.Hour), want: true},
		{name: "in grace period", sess: sess, at: end.Add(10 * time.Minute), want: true},
		{name: "end of grace period", sess: sess, at: end.Add(15 * time.Minute), want: true},
		{name: "after grace period", sess: sess, at: end.Add(16 * time.Minute), want: false},
		{name: "not scheduled", sess: Session{}, at: start, want: false},
		{name: "no end", sess: Session{StartTime: start}, at: end.Add(time.Hour), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sess.IsOpenAt(tt.at))
		})
	}
}

func TestResponseSlot_SelectedRecipient(t *testing.T) {
	slot := ResponseSlot{RecipientOptions: BuildRecipientOptions(
		[]RecipientCandidate{{Identifier: "a&b@x.com", Name: "AB"}}, strPtr("a&b@x.com"),
	)}
	got, ok := slot.SelectedRecipient()
	assert.True(t, ok)
	assert.Equal(t, "a&b@x.com", got)

	empty := ResponseSlot{RecipientOptions: BuildRecipientOptions(nil, nil)}
	_, ok = empty.SelectedRecipient()
	assert.False(t, ok)
}
