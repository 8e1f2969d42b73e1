package store

import (
	"os"
	"strings"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"ideas", "tags", "idea_tags", "relations"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenExistingStoreIsSafe(t *testing.T) {
	f, err := os.CreateTemp("", "ansuz-reopen-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Create(CreateIdea{Title: "Persist", Content: "body"}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db2, err := Open(f.Name())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	n, err := db2.Count()
	if err != nil || n != 1 {
		t.Fatalf("count after reopen = %d, err %v", n, err)
	}
}

func TestCreateAndGet(t *testing.T) {
	db := testDB(t)
	res, err := db.Create(CreateIdea{
		Title:    "Test",
		Content:  "Hello world",
		Category: "demo",
		Source:   "test",
		Tags:     []string{"go", "notes"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID != 1 {
		t.Errorf("id = %d, want 1", res.ID)
	}
	if !strings.HasPrefix(res.Slug, "test-") {
		t.Errorf("slug = %q, want test-<timestamp>", res.Slug)
	}

	idea, err := db.Get(res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if idea == nil {
		t.Fatal("Get returned nil for existing idea")
	}
	if idea.Title != "Test" || idea.Content != "Hello world" {
		t.Errorf("round trip mismatch: %+v", idea)
	}
	if idea.Category != "demo" || idea.Source != "test" {
		t.Errorf("category/source mismatch: %+v", idea)
	}
	if len(idea.Tags) != 2 {
		t.Errorf("tags = %v, want 2", idea.Tags)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testDB(t)
	if _, err := db.Create(CreateIdea{Title: "", Content: "x"}); err == nil {
		t.Error("empty title should fail")
	}
	if _, err := db.Create(CreateIdea{Title: "x", Content: "  "}); err == nil {
		t.Error("blank content should fail")
	}
}

func TestCreateDerivesSummary(t *testing.T) {
	db := testDB(t)
	long := strings.Repeat("wordy content here ", 20)
	res, err := db.Create(CreateIdea{Title: "Summarized", Content: "# Heading\n" + long})
	if err != nil {
		t.Fatal(err)
	}
	idea, _ := db.Get(res.ID)
	if idea.Summary == "" {
		t.Fatal("summary not derived")
	}
	if strings.ContainsAny(idea.Summary, "#*`[]()>") {
		t.Errorf("summary retains markup: %q", idea.Summary)
	}
	if !strings.HasSuffix(idea.Summary, "...") {
		t.Errorf("long summary missing ellipsis: %q", idea.Summary)
	}
}

func TestCreateUpsertsBySlug(t *testing.T) {
	db := testDB(t)
	first, err := db.Create(CreateIdea{Title: "Original", Content: "v1", Slug: "fixed-slug"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.Create(CreateIdea{Title: "Replacement", Content: "v2", Slug: "fixed-slug"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created new row: ids %d vs %d", first.ID, second.ID)
	}
	if !second.Updated {
		t.Error("second create should report updated")
	}
	n, _ := db.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	idea, _ := db.Get(first.ID)
	if idea.Title != "Replacement" || idea.Content != "v2" {
		t.Errorf("row not updated in place: %+v", idea)
	}
}

func TestUpdateFields(t *testing.T) {
	db := testDB(t)
	res, _ := db.Create(CreateIdea{Title: "Test", Content: "Hello world"})

	cat := "demo"
	ok, err := db.Update(res.ID, UpdateIdea{Category: &cat})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !ok {
		t.Fatal("update should succeed")
	}
	idea, _ := db.Get(res.ID)
	if idea.Category != "demo" {
		t.Errorf("category = %q, want demo", idea.Category)
	}
	if idea.Title != "Test" {
		t.Errorf("unset field changed: title = %q", idea.Title)
	}
}

func TestUpdateNoFields(t *testing.T) {
	db := testDB(t)
	res, _ := db.Create(CreateIdea{Title: "A", Content: "b"})
	ok, err := db.Update(res.ID, UpdateIdea{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ok {
		t.Error("empty update should return false")
	}
}

func TestUpdateMissingID(t *testing.T) {
	db := testDB(t)
	title := "x"
	ok, err := db.Update(999, UpdateIdea{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ok {
		t.Error("update of missing id should return false, not error")
	}
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db.SetClock(func() time.Time { return base })
	res, _ := db.Create(CreateIdea{Title: "Clock", Content: "tick"})

	db.SetClock(func() time.Time { return base.Add(time.Hour) })
	title := "Tock"
	if ok, _ := db.Update(res.ID, UpdateIdea{Title: &title}); !ok {
		t.Fatal("update failed")
	}

	idea, _ := db.Get(res.ID)
	if !idea.UpdatedAt.After(idea.CreatedAt) {
		t.Errorf("updated_at %v not after created_at %v", idea.UpdatedAt, idea.CreatedAt)
	}
}

func TestTagReplaceAll(t *testing.T) {
	db := testDB(t)
	res, _ := db.Create(CreateIdea{Title: "Tagged", Content: "x", Tags: []string{"a", "b"}})

	ok, err := db.Update(res.ID, UpdateIdea{Tags: []string{"b", "c"}})
	if err != nil || !ok {
		t.Fatalf("Update tags: ok=%v err=%v", ok, err)
	}

	idea, _ := db.Get(res.ID)
	if len(idea.Tags) != 2 || idea.Tags[0] != "b" || idea.Tags[1] != "c" {
		t.Errorf("tags = %v, want [b c]", idea.Tags)
	}

	// "a" stays in the tags table with zero links.
	tags, err := db.Tags()
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	for _, tc := range tags {
		counts[tc.Name] = tc.Count
	}
	if c, present := counts["a"]; !present || c != 0 {
		t.Errorf("tag a: present=%v count=%d, want zero-count row", present, c)
	}
	if counts["b"] != 1 || counts["c"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestTagsTrimmedAndDeduped(t *testing.T) {
	db := testDB(t)
	res, _ := db.Create(CreateIdea{Title: "T", Content: "c", Tags: []string{" Go ", "go", "", "  "}})
	idea, _ := db.Get(res.ID)
	if len(idea.Tags) != 1 || idea.Tags[0] != "go" {
		t.Errorf("tags = %v, want [go]", idea.Tags)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	res, _ := db.Create(CreateIdea{Title: "Doomed", Content: "x", Tags: []string{"t"}})
	other, _ := db.Create(CreateIdea{Title: "Other", Content: "y"})
	_, _ = db.AddRelation(res.ID, other.ID, "", "")

	ok, err := db.Delete(res.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !ok {
		t.Fatal("delete should report removal")
	}
	if idea, _ := db.Get(res.ID); idea != nil {
		t.Error("idea still present after delete")
	}

	// Links and relations cascade away.
	var links int
	_ = db.conn.QueryRow(`SELECT COUNT(*) FROM idea_tags WHERE idea_id = ?`, res.ID).Scan(&links)
	if links != 0 {
		t.Errorf("orphaned tag links: %d", links)
	}
	rels, _ := db.Relations(other.ID)
	if len(rels) != 0 {
		t.Errorf("orphaned relations: %v", rels)
	}
}

func TestDeleteMissingID(t *testing.T) {
	db := testDB(t)
	_, _ = db.Create(CreateIdea{Title: "Keep", Content: "x"})
	before, _ := db.Count()

	ok, err := db.Delete(999)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok {
		t.Error("delete of missing id should return false")
	}
	after, _ := db.Count()
	if after != before {
		t.Errorf("count changed: %d -> %d", before, after)
	}
}

func TestSearchKeyword(t *testing.T) {
	db := testDB(t)
	_, _ = db.Create(CreateIdea{Title: "Foo in title", Content: "nothing"})
	_, _ = db.Create(CreateIdea{Title: "Second", Content: "body mentions foo here"})
	_, _ = db.Create(CreateIdea{Title: "Third", Content: "unrelated"})

	got, err := db.Search(SearchFilter{Keyword: "foo"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
}

func TestSearchFiltersAnded(t *testing.T) {
	db := testDB(t)
	_, _ = db.Create(CreateIdea{Title: "Go notes", Content: "x", Category: "tech", Tags: []string{"lang"}})
	_, _ = db.Create(CreateIdea{Title: "Go trips", Content: "x", Category: "travel", Tags: []string{"lang"}})
	_, _ = db.Create(CreateIdea{Title: "Go stuff", Content: "x", Category: "tech"})

	got, err := db.Search(SearchFilter{Keyword: "Go", Category: "tech", Tag: "lang"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Go notes" {
		t.Errorf("results = %+v, want only Go notes", got)
	}
}

func TestSearchTagMixedCase(t *testing.T) {
	db := testDB(t)
	res, err := db.Create(CreateIdea{Title: "Tagged", Content: "x", Tags: []string{"Go"}})
	if err != nil {
		t.Fatal(err)
	}

	// Tags are lowercased on write; any spelling must match on read.
	for _, spelling := range []string{"Go", "go", " GO "} {
		got, err := db.Search(SearchFilter{Tag: spelling})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != res.ID {
			t.Errorf("Search(Tag: %q) = %d results, want 1", spelling, len(got))
		}
	}
}

func TestSearchOrderNewestFirst(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		offset := time.Duration(i) * time.Minute
		db.SetClock(func() time.Time { return base.Add(offset) })
		if _, err := db.Create(CreateIdea{Title: title, Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.Search(SearchFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Title != "newest" || got[2].Title != "oldest" {
		titles := make([]string, len(got))
		for i, g := range got {
			titles[i] = g.Title
		}
		t.Errorf("order = %v, want newest first", titles)
	}
}

func TestSearchPagination(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		offset := time.Duration(i) * time.Second
		db.SetClock(func() time.Time { return base.Add(offset) })
		_, _ = db.Create(CreateIdea{Title: "Idea", Content: "x", Slug: string(rune('a' + i))})
	}

	page, err := db.Search(SearchFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("page size = %d, want 2", len(page))
	}
}

func TestGetBySlug(t *testing.T) {
	db := testDB(t)
	res, _ := db.Create(CreateIdea{Title: "Sluggy", Content: "x"})
	idea, err := db.GetBySlug(res.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if idea == nil || idea.ID != res.ID {
		t.Errorf("GetBySlug = %+v", idea)
	}
	missing, err := db.GetBySlug("no-such-slug")
	if err != nil || missing != nil {
		t.Errorf("missing slug: idea=%v err=%v, want nil/nil", missing, err)
	}
}

func TestCategories(t *testing.T) {
	db := testDB(t)
	_, _ = db.Create(CreateIdea{Title: "a", Content: "x", Category: "tech"})
	_, _ = db.Create(CreateIdea{Title: "b", Content: "x", Category: "tech"})
	_, _ = db.Create(CreateIdea{Title: "c", Content: "x", Category: "life"})
	_, _ = db.Create(CreateIdea{Title: "d", Content: "x"})

	cats, err := db.Categories()
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2 (empty excluded)", len(cats))
	}
	if cats[0].Category != "tech" || cats[0].Count != 2 {
		t.Errorf("first category = %+v, want tech/2", cats[0])
	}
}

func TestEndToEndLifecycle(t *testing.T) {
	db := testDB(t)

	res, err := db.Create(CreateIdea{Title: "Test", Content: "Hello world"})
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != 1 || !strings.HasPrefix(res.Slug, "test-") {
		t.Fatalf("create result = %+v", res)
	}

	idea, _ := db.Get(1)
	if idea.Title != "Test" || idea.Content != "Hello world" || len(idea.Tags) != 0 {
		t.Fatalf("get = %+v", idea)
	}

	cat := "demo"
	if ok, _ := db.Update(1, UpdateIdea{Category: &cat}); !ok {
		t.Fatal("update failed")
	}
	idea, _ = db.Get(1)
	if idea.Category != "demo" {
		t.Fatalf("category = %q", idea.Category)
	}

	if ok, _ := db.Delete(1); !ok {
		t.Fatal("delete failed")
	}
	if idea, _ := db.Get(1); idea != nil {
		t.Fatal("idea survived delete")
	}
}
