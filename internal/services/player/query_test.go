package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "explicit search prefix passes through",
			query: "scsearch:lofi beats",
			want:  "scsearch:lofi beats",
		},
		{
			name:  "search prefix is case insensitive",
			query: "YTSearch:some song",
			want:  "YTSearch:some song",
		},
		{
			name:  "scheme-qualified url passes through",
			query: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:  "www url passes through",
			query: "www.soundcloud.com/artist/track",
			want:  "www.soundcloud.com/artist/track",
		},
		{
			name:  "bare platform domain passes through",
			query: "open.spotify.com/track/abc123",
			want:  "open.spotify.com/track/abc123",
		},
		{
			name:  "short youtube link passes through",
			query: "youtu.be/dQw4w9WgXcQ",
			want:  "youtu.be/dQw4w9WgXcQ",
		},
		{
			name:  "plain text gets the default prefix",
			query: "never gonna give you up",
			want:  "ytmsearch:never gonna give you up",
		},
		{
			name:  "surrounding whitespace is trimmed",
			query: "  lofi hip hop  ",
			want:  "ytmsearch:lofi hip hop",
		},
		{
			name:  "empty input yields no query",
			query: "",
			want:  "",
		},
		{
			name:  "whitespace-only input yields no query",
			query: "   \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveQuery(tt.query))
		})
	}
}
