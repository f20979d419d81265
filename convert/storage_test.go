package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentPath(t *testing.T) {
	assert.Equal(t, "/download/attachments/100/report.pdf", AttachmentPath("100", "report.pdf"))
	assert.Equal(t, "/download/attachments/100/my%20diagram.png", AttachmentPath("100", "my diagram.png"))
}

func TestNormalizeStorage(t *testing.T) {
	tests := []struct {
		name    string
		storage string
		want    []string
		notWant []string
	}{
		{
			name:    "plain html untouched",
			storage: `<p>Hello <a href="https://example.com">world</a></p>`,
			want:    []string{`<p>Hello <a href="https://example.com">world</a></p>`},
		},
		{
			name:    "attached image",
			storage: `<p><ac:image ac:alt="Chart"><ri:attachment ri:filename="chart.png" /></ac:image></p>`,
			want:    []string{`<img src="/download/attachments/100/chart.png" alt="Chart"/>`},
			notWant: []string{"ac:image", "ri:attachment"},
		},
		{
			name:    "image without alt uses filename",
			storage: `<ac:image><ri:attachment ri:filename="my diagram.png" /></ac:image>`,
			want:    []string{`src="/download/attachments/100/my%20diagram.png"`, `alt="my diagram.png"`},
		},
		{
			name:    "external image",
			storage: `<ac:image><ri:url ri:value="https://cdn.example.com/logo.svg" /></ac:image>`,
			want:    []string{`<img src="https://cdn.example.com/logo.svg" alt=""/>`},
		},
		{
			name:    "attachment link with body",
			storage: `<p><ac:link><ri:attachment ri:filename="report.pdf" /><ac:plain-text-link-body><![CDATA[Q3 report]]></ac:plain-text-link-body></ac:link></p>`,
			want:    []string{`<a href="/download/attachments/100/report.pdf">Q3 report</a>`},
		},
		{
			name:    "attachment link without body",
			storage: `<ac:link><ri:attachment ri:filename="report.pdf" /></ac:link>`,
			want:    []string{`<a href="/download/attachments/100/report.pdf">report.pdf</a>`},
		},
		{
			name:    "attachment of another page",
			storage: `<ac:image><ri:attachment ri:filename="other.png"><ri:page ri:content-title="Elsewhere" /></ri:attachment></ac:image>`,
			want:    []string{"other.png"},
			notWant: []string{"<img", "/download/attachments/100/other.png"},
		},
		{
			name:    "page link keeps text",
			storage: `<ac:link><ri:page ri:content-title="Runbook" /><ac:plain-text-link-body><![CDATA[see runbook]]></ac:plain-text-link-body></ac:link>`,
			want:    []string{"see runbook"},
			notWant: []string{"<a"},
		},
		{
			name:    "view-file macro",
			storage: `<ac:structured-macro ac:name="view-file"><ac:parameter ac:name="name"><ri:attachment ri:filename="slides.pptx" /></ac:parameter></ac:structured-macro>`,
			want:    []string{`<a href="/download/attachments/100/slides.pptx">slides.pptx</a>`},
			notWant: []string{"ac:structured-macro"},
		},
		{
			name:    "code macro",
			storage: `<ac:structured-macro ac:name="code"><ac:parameter ac:name="language">go</ac:parameter><ac:plain-text-body><![CDATA[if a < b {}]]></ac:plain-text-body></ac:structured-macro>`,
			want:    []string{`<pre><code class="language-go">if a &lt; b {}</code></pre>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeStorage(tt.storage, "100")
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestNormalizedStorageConvertsToMarkdownLinks(t *testing.T) {
	storage := `<p>See <ac:link><ri:attachment ri:filename="report.pdf" /><ac:plain-text-link-body><![CDATA[Report]]></ac:plain-text-link-body></ac:link> and <ac:image><ri:attachment ri:filename="chart.png" /></ac:image></p>`

	normalized, err := NormalizeStorage(storage, "100")
	require.NoError(t, err)

	markdown, err := NewHTMLToMarkdown().Convert(context.Background(), normalized)
	require.NoError(t, err)
	assert.Contains(t, markdown, "[Report](/download/attachments/100/report.pdf)")
	assert.Contains(t, markdown, "![chart.png](/download/attachments/100/chart.png)")
}
