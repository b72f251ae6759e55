package preview

import "testing"

func TestExtract(t *testing.T) {
	head := `
		<title>
			Why Go Modules Matter |
			A Writer | Medium
		</title>
		<meta property="og:site_name" content="Medium">
		<meta name="description" content="  A short take on dependency hygiene.  ">
		<meta name="author" content="A Writer">
		<link rel="canonical" href="https://medium.com/@awriter/why-go-modules-matter-1abc">
		<link rel="icon" href="https://miro.medium.com/v2/icon.png">`

	p := Extract(head)

	if p.Title != "Why Go Modules Matter | A Writer | Medium" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.SiteName != "Medium" {
		t.Errorf("SiteName = %q", p.SiteName)
	}
	if p.Description != "A short take on dependency hygiene." {
		t.Errorf("Description = %q", p.Description)
	}
	if p.Author != "A Writer" {
		t.Errorf("Author = %q", p.Author)
	}
	if p.Canonical != "https://medium.com/@awriter/why-go-modules-matter-1abc" {
		t.Errorf("Canonical = %q", p.Canonical)
	}
	if p.Favicon != "https://miro.medium.com/v2/icon.png" {
		t.Errorf("Favicon = %q", p.Favicon)
	}
}

func TestExtract_Fallbacks(t *testing.T) {
	head := `
		<meta property="og:title" content="Fallback Title">
		<meta property="og:description" content="Fallback description.">
		<link rel="shortcut icon" href="/favicon.ico">`

	p := Extract(head)

	if p.Title != "Fallback Title" {
		t.Errorf("Title = %q, want og:title fallback", p.Title)
	}
	if p.Description != "Fallback description." {
		t.Errorf("Description = %q, want og:description fallback", p.Description)
	}
	if p.Favicon != "/favicon.ico" {
		t.Errorf("Favicon = %q, want shortcut icon fallback", p.Favicon)
	}
}

func TestExtract_EmptyAndTruncated(t *testing.T) {
	if p := Extract(""); p != (Preview{}) {
		t.Errorf("Extract(\"\") = %+v, want zero value", p)
	}

	// The probe regularly hands over heads cut mid-tag.
	p := Extract(`<title>Cut Short</title><meta property="og:descri`)
	if p.Title != "Cut Short" {
		t.Errorf("Title = %q, want value before the cut", p.Title)
	}
}
