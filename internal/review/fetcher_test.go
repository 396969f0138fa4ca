package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/mocks"
)

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		repo       string
		content    []byte
		fetchErr   error
		expectCall bool
		wantStatus core.FetchStatus
		wantLines  int
		wantReason string
	}{
		{
			name:       "small text file",
			repo:       "acme/widgets",
			content:    linesOf(50),
			expectCall: true,
			wantStatus: core.FetchStatusOK,
			wantLines:  50,
		},
		{
			name:       "exactly at the limit",
			repo:       "acme/widgets",
			content:    linesOf(1000),
			expectCall: true,
			wantStatus: core.FetchStatusOK,
			wantLines:  1000,
		},
		{
			name:       "over the limit",
			repo:       "acme/widgets",
			content:    linesOf(1200),
			expectCall: true,
			wantStatus: core.FetchStatusTooLarge,
			wantLines:  1200,
		},
		{
			name:       "retrieval error",
			repo:       "acme/widgets",
			fetchErr:   errors.New("404 Not Found"),
			expectCall: true,
			wantStatus: core.FetchStatusFailed,
			wantReason: "retrieve: 404 Not Found",
		},
		{
			name:       "binary content",
			repo:       "acme/widgets",
			content:    []byte{0x89, 0x50, 0x4e, 0x47, 0xff, 0xfe},
			expectCall: true,
			wantStatus: core.FetchStatusFailed,
			wantReason: "content is not valid UTF-8 text",
		},
		{
			name:       "malformed repository",
			repo:       "acme",
			wantStatus: core.FetchStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)
			if tt.expectCall {
				client.EXPECT().
					GetFileContent(gomock.Any(), "acme", "widgets", "main.go", "sha1").
					Return(tt.content, tt.fetchErr)
			}

			got := NewFetcher(client, 0, discardLogger()).Fetch(t.Context(), tt.repo, "sha1", "main.go")

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, "main.go", got.Content.Filename)
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantLines, got.Content.Lines)
			}
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestFetcher_CustomLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetFileContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(linesOf(11), nil)

	got := NewFetcher(client, 10, discardLogger()).Fetch(t.Context(), "acme/widgets", "sha1", "main.go")
	assert.Equal(t, core.FetchStatusTooLarge, got.Status)
}
