// Package render builds the HTML fragments the page controller swaps into
// the file list. It has no DOM dependency so the server can render the same
// markup for the first page load.
package render

import (
	"html"
	"net/url"
	"strings"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

// EmptyState is shown when the shared folder has no visible files.
const EmptyState = `
<div class="empty-state">
  <div class="empty-icon">📭</div>
  <p>No files yet</p>
  <p class="empty-hint">Uploaded files will show up here</p>
</div>
`

// FileList renders the #fileList contents for files.
func FileList(files []model.FileInfo) string {
	if len(files) == 0 {
		return EmptyState
	}

	var builder strings.Builder
	for _, f := range files {
		name := html.EscapeString(f.Name)
		builder.WriteString(`<div class="file-item" data-filename="` + name + `">`)
		builder.WriteString(`<div class="file-icon">📄</div>`)
		builder.WriteString(`<div class="file-info">`)
		builder.WriteString(`<div class="file-name">` + EscapeHTML(f.Name) + `</div>`)
		builder.WriteString(`<div class="file-meta">`)
		builder.WriteString(`<span class="file-size">` + html.EscapeString(f.SizeStr) + `</span>`)
		builder.WriteString(`<span class="file-time">` + html.EscapeString(f.MTimeStr) + `</span>`)
		builder.WriteString(`</div></div>`)

		builder.WriteString(`<div class="file-actions">`)
		builder.WriteString(`<a href="` + html.EscapeString(DownloadURL(f.Name)) + `" class="btn btn-download btn-sm" title="Download">⬇️</a>`)
		// The handler body is JS inside an HTML attribute: JS-escape, then HTML-escape.
		onclick := "deleteFile('" + EscapeJS(f.Name) + "')"
		builder.WriteString(`<button type="button" class="btn btn-delete btn-sm" onclick="` + html.EscapeString(onclick) + `" title="Delete">🗑️</button>`)
		builder.WriteString(`</div></div>`)
	}
	return builder.String()
}

// DownloadURL returns the download path for a stored file name.
func DownloadURL(name string) string {
	return "/download/" + url.PathEscape(name)
}

// DeleteURL returns the delete endpoint for a stored file name.
func DeleteURL(name string) string {
	return "/delete/" + url.PathEscape(name)
}

// EscapeHTML escapes text for use as element content or a quoted attribute.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

var jsReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// EscapeJS escapes text for a single- or double-quoted JavaScript string literal.
func EscapeJS(text string) string {
	return jsReplacer.Replace(text)
}
