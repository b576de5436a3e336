package blogstore

import (
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/leadcentral/internal/testutil"
)

func TestCreateGeneratesSlugAndSanitizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	domainID := primitive.NewObjectID()
	authorID := primitive.NewObjectID()

	b, err := store.Create(ctx, CreateInput{
		DomainID:   domainID,
		DomainName: "acme.example.com",
		Title:      "Hello, World! A First Post",
		Content:    `<p>Welcome</p><script>alert("x")</script>`,
		Status:     models.BlogStatusPublished,
		AuthorID:   authorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Slug != "hello-world-a-first-post" {
		t.Fatalf("Slug = %q", b.Slug)
	}
	if strings.Contains(b.Content, "<script>") {
		t.Fatal("content was not sanitized")
	}
	if b.PublishedAt == nil {
		t.Fatal("published post has no PublishedAt")
	}

	got, err := store.GetBySlug(ctx, domainID, "hello-world-a-first-post")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != b.ID {
		t.Fatal("GetBySlug returned wrong post")
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	b, err := store.Create(ctx, CreateInput{
		DomainID: primitive.NewObjectID(),
		Title:    "Untitled Draft",
		AuthorID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != models.BlogStatusDraft {
		t.Fatalf("Status = %q, want draft", b.Status)
	}
	if b.PublishedAt != nil {
		t.Fatal("draft has PublishedAt set")
	}
}

func TestCreateDuplicateSlugSameDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	domainID := primitive.NewObjectID()
	authorID := primitive.NewObjectID()

	if _, err := store.Create(ctx, CreateInput{DomainID: domainID, Title: "Same Title", AuthorID: authorID}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Identical slug on the same domain collides.
	_, err := store.Create(ctx, CreateInput{DomainID: domainID, Title: "Same! Title?", AuthorID: authorID})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("err = %v, want ErrDuplicateSlug", err)
	}

	// The same slug on another domain is fine.
	if _, err := store.Create(ctx, CreateInput{DomainID: primitive.NewObjectID(), Title: "Same Title", AuthorID: authorID}); err != nil {
		t.Fatalf("Create on other domain: %v", err)
	}
}

func TestCreateRejectsEmptySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	_, err := store.Create(ctx, CreateInput{
		DomainID: primitive.NewObjectID(),
		Title:    "!!!",
		AuthorID: primitive.NewObjectID(),
	})
	if err == nil {
		t.Fatal("expected error for title with no slug characters")
	}
}

func TestListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	domainA := primitive.NewObjectID()
	domainB := primitive.NewObjectID()
	author := primitive.NewObjectID()

	posts := []CreateInput{
		{DomainID: domainA, Title: "A One", Status: models.BlogStatusPublished, AuthorID: author},
		{DomainID: domainA, Title: "A Two", Status: models.BlogStatusDraft, AuthorID: author},
		{DomainID: domainB, Title: "B One", Status: models.BlogStatusPublished, AuthorID: primitive.NewObjectID()},
	}
	for _, in := range posts {
		if _, err := store.Create(ctx, in); err != nil {
			t.Fatalf("Create %s: %v", in.Title, err)
		}
	}

	got, err := store.List(ctx, ListFilter{DomainID: domainA})
	if err != nil {
		t.Fatalf("List by domain: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("domain A posts = %d, want 2", len(got))
	}

	got, err = store.List(ctx, ListFilter{Status: models.BlogStatusPublished})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("published posts = %d, want 2", len(got))
	}

	got, err = store.List(ctx, ListFilter{AuthorID: author, Status: models.BlogStatusDraft})
	if err != nil {
		t.Fatalf("List by author+status: %v", err)
	}
	if len(got) != 1 || got[0].Title != "A Two" {
		t.Fatalf("unexpected author drafts: %+v", got)
	}
}

func TestCreateHonorsExplicitSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	b, err := store.Create(ctx, CreateInput{
		DomainID: primitive.NewObjectID(),
		Title:    "Launch Announcement",
		Slug:     "  Big Launch!! 2026 ",
		AuthorID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Slug != "big-launch-2026" {
		t.Fatalf("Slug = %q, want normalized explicit slug", b.Slug)
	}
}

func TestUpdateKeepsSlugStable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	domainID := primitive.NewObjectID()
	b, err := store.Create(ctx, CreateInput{DomainID: domainID, Title: "Old Title", AuthorID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A title change alone leaves the slug where it was.
	title := "Brand New Title"
	published := models.BlogStatusPublished
	if err := store.UpdateFromInput(ctx, b.ID, UpdateInput{Title: &title, Status: &published}); err != nil {
		t.Fatalf("UpdateFromInput: %v", err)
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Slug != "old-title" {
		t.Fatalf("Slug = %q, want old-title", got.Slug)
	}
	if got.Status != models.BlogStatusPublished || got.PublishedAt == nil {
		t.Fatal("publish transition did not stamp PublishedAt")
	}

	// An explicit slug edit moves it, normalized.
	newSlug := "Renamed Post"
	if err := store.UpdateFromInput(ctx, b.ID, UpdateInput{Slug: &newSlug}); err != nil {
		t.Fatalf("UpdateFromInput slug: %v", err)
	}
	got, err = store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Slug != "renamed-post" {
		t.Fatalf("Slug = %q, want renamed-post", got.Slug)
	}
}

func TestCountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx := testutil.TestContext(t)

	domainID := primitive.NewObjectID()
	author := primitive.NewObjectID()
	for i, st := range []string{models.BlogStatusDraft, models.BlogStatusDraft, models.BlogStatusPublished} {
		if _, err := store.Create(ctx, CreateInput{
			DomainID: domainID,
			Title:    "Post " + string(rune('A'+i)),
			Status:   st,
			AuthorID: author,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[models.BlogStatusDraft] != 2 || counts[models.BlogStatusPublished] != 1 {
		t.Fatalf("counts = %+v", counts)
	}
}
