package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    any
		wantErr error
	}{
		{
			name: "content changed",
			raw:  `{"type":"content_changed","text":"# Hello<br/>"}`,
			want: ContentChangedMessage{Type: MessageTypeContentChanged, Text: "# Hello<br/>"},
		},
		{
			name: "height changed",
			raw:  `{"type":"height_changed","height":64}`,
			want: HeightChangedMessage{Type: MessageTypeHeightChanged, Height: 64},
		},
		{
			name:    "negative height",
			raw:     `{"type":"height_changed","height":-1}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "height with wrong type",
			raw:     `{"type":"height_changed","height":"tall"}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "not json",
			raw:     `<html>`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"go_to_line","line":3}`,
			wantErr: ErrUnknownMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
