package domain

import "testing"

func TestKindFromMimeType(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     Kind
	}{
		{name: "folder", mimeType: FolderMimeType, want: KindFolder},
		{name: "document", mimeType: "application/vnd.google-apps.document", want: KindFile},
		{name: "pdf", mimeType: "application/pdf", want: KindFile},
		{name: "empty", mimeType: "", want: KindFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindFromMimeType(tt.mimeType); got != tt.want {
				t.Errorf("KindFromMimeType(%q) = %q, want %q", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestItem_HasMultipleParents(t *testing.T) {
	if (Item{ParentIDs: []string{"p1"}}).HasMultipleParents() {
		t.Error("single parent reported as multiple")
	}
	if !(Item{ParentIDs: []string{"p1", "p2"}}).HasMultipleParents() {
		t.Error("two parents not reported as multiple")
	}
	if (Item{}).HasMultipleParents() {
		t.Error("no parents reported as multiple")
	}
}

func TestTeamDrive_AsItem(t *testing.T) {
	item := TeamDrive{ID: "td1", Name: "Science"}.AsItem()
	if !item.IsFolder() {
		t.Error("expected team drive item to be a folder")
	}
	if item.ID != "td1" || item.Name != "Science" {
		t.Errorf("unexpected item: %+v", item)
	}
}
