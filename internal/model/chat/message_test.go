package chat

import (
	"errors"
	"testing"
)

func TestMessageValidate(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want error
	}{
		{"user turn", Message{Role: RoleUser, Text: "hi"}, nil},
		{"assistant turn", Message{Role: RoleAssistant, Text: "hello"}, nil},
		{"unknown role", Message{Role: "system", Text: "x"}, ErrInvalidRole},
		{"blank text", Message{Role: RoleUser, Text: "  \n"}, ErrEmptyText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
