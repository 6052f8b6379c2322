package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

func parse(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return doc
}

func TestFileListEmptyState(t *testing.T) {
	doc := parse(t, FileList(nil))
	if doc.Find(".empty-state").Length() != 1 {
		t.Fatalf("expected empty state block")
	}
	if doc.Find(".file-item").Length() != 0 {
		t.Fatalf("expected no file items")
	}
}

func TestFileListRendersItems(t *testing.T) {
	files := []model.FileInfo{
		{Name: "report.pdf", SizeStr: "1.5 KB", MTimeStr: "2026-01-02 03:04:05"},
		{Name: "notes.txt", SizeStr: "12 B", MTimeStr: "2026-01-01 00:00:00"},
	}
	doc := parse(t, FileList(files))

	items := doc.Find(".file-item")
	if items.Length() != 2 {
		t.Fatalf("expected 2 items, got %d", items.Length())
	}
	first := items.First()
	if got, _ := first.Attr("data-filename"); got != "report.pdf" {
		t.Fatalf("unexpected data-filename %q", got)
	}
	if got := first.Find(".file-size").Text(); got != "1.5 KB" {
		t.Fatalf("unexpected size %q", got)
	}
	if got := first.Find(".file-time").Text(); got != "2026-01-02 03:04:05" {
		t.Fatalf("unexpected time %q", got)
	}
	if href, _ := first.Find("a.btn-download").Attr("href"); href != "/download/report.pdf" {
		t.Fatalf("unexpected download href %q", href)
	}
	if onclick, _ := first.Find("button.btn-delete").Attr("onclick"); onclick != "deleteFile('report.pdf')" {
		t.Fatalf("unexpected onclick %q", onclick)
	}
}

func TestFileListEscapesHostileNames(t *testing.T) {
	name := `<img src=x onerror=alert(1)>'"quote.txt`
	doc := parse(t, FileList([]model.FileInfo{{Name: name}}))

	if doc.Find("img").Length() != 0 {
		t.Fatalf("name was interpreted as markup")
	}
	item := doc.Find(".file-item")
	if got, _ := item.Attr("data-filename"); got != name {
		t.Fatalf("data-filename did not round trip: %q", got)
	}
	if got := item.Find(".file-name").Text(); got != name {
		t.Fatalf("file-name text did not round trip: %q", got)
	}
	onclick, _ := item.Find("button.btn-delete").Attr("onclick")
	want := `deleteFile('<img src=x onerror=alert(1)>\'\"quote.txt')`
	if onclick != want {
		t.Fatalf("unexpected onclick %q, want %q", onclick, want)
	}
}

func TestDownloadURLEscapesPath(t *testing.T) {
	if got := DownloadURL("a b/c?.txt"); got != "/download/a%20b%2Fc%3F.txt" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := DeleteURL("报告.txt"); got != "/delete/%E6%8A%A5%E5%91%8A.txt" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestEscapeJS(t *testing.T) {
	got := EscapeJS("a\\b'c\"d\ne\rf")
	want := `a\\b\'c\"d\ne\rf`
	if got != want {
		t.Fatalf("EscapeJS = %q, want %q", got, want)
	}
}

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<a href="x">Tom & 'Jerry'</a>`)
	want := "&lt;a href=&#34;x&#34;&gt;Tom &amp; &#39;Jerry&#39;&lt;/a&gt;"
	if got != want {
		t.Fatalf("EscapeHTML = %q, want %q", got, want)
	}
}
