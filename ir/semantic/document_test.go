package semantic

import "testing"

func TestAppendLeavesReceiverUntouched(t *testing.T) {
	a := &Page{Label: "a"}
	b := &Page{Label: "b"}

	base := NewDocument(&DocumentInfo{Title: "t"}).Append(a)
	next := base.Append(b)
	other := base.Append(&Page{Label: "c"})

	if base.Len() != 1 {
		t.Fatalf("base.Len() = %d, want 1", base.Len())
	}
	if next.Len() != 2 || next.Page(1) != b {
		t.Fatalf("next pages = %d, want a then b", next.Len())
	}
	if other.Page(1).Label != "c" || next.Page(1).Label != "b" {
		t.Fatal("sibling appends share storage")
	}
	if next.Info.Title != "t" {
		t.Fatalf("info not carried: %+v", next.Info)
	}
}

func TestAppendSealsPagesAndSkipsNil(t *testing.T) {
	p := &Page{Label: "p"}
	doc := NewDocument(nil).Append(nil, p, nil)
	if doc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", doc.Len())
	}
	if !p.Sealed() {
		t.Fatal("appended page is not sealed")
	}
}

func TestPagesReturnsCopy(t *testing.T) {
	doc := NewDocument(nil).Append(&Page{Label: "a"})
	pages := doc.Pages()
	pages[0] = &Page{Label: "x"}
	if doc.Page(0).Label != "a" {
		t.Fatal("Pages exposed internal storage")
	}
	var nilDoc *Document
	if nilDoc.Len() != 0 || nilDoc.Page(0) != nil || nilDoc.Pages() != nil {
		t.Fatal("nil document should be empty")
	}
}
