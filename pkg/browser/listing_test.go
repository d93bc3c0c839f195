package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListing(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		files []string
	}{
		{
			name: "data-name attributes",
			body: `<ul id="files">
				<li class="file-entry" data-name="cat.png">cat</li>
				<li class="file-entry" data-name="dog.jpg">dog</li>
			</ul>`,
			files: []string{"cat.png", "dog.jpg"},
		},
		{
			name: "text content fallback",
			body: `<div class="file-entry"> Sommer_2024.JPG </div>`,
			files: []string{"Sommer_2024.JPG"},
		},
		{
			name:  "order and case preserved",
			body:  `<i class="file-entry">B.png</i><i class="file-entry">a.PNG</i>`,
			files: []string{"B.png", "a.PNG"},
		},
		{
			name:  "other classes ignored",
			body:  `<li class="dir-entry">subdir</li><li class="file-entry selected">x.gif</li>`,
			files: []string{"x.gif"},
		},
		{
			name:  "empty body",
			body:  "",
			files: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.files, ParseListing(tt.body))
		})
	}
}

func TestIsBlockedNavigation(t *testing.T) {
	assert.True(t, isBlockedNavigation(assertErr("page.goto: net::ERR_BLOCKED_BY_CLIENT at https://shop.example/admin")))
	assert.False(t, isBlockedNavigation(assertErr("page.goto: net::ERR_CONNECTION_REFUSED")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
