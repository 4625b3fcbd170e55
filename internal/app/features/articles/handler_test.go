package articles_test

import (
	"net/http"
	"reflect"
	"strconv"
	"testing"

	"github.com/dalemusser/folio/internal/app/features/articles"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*articles.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return articles.NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func withID(r *http.Request, id int64) *http.Request {
	return testutil.WithChiURLParam(r, "id", strconv.FormatInt(id, 10))
}

func TestCreateThenFetch(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateMember(ctx, "Writer")
	l1 := fx.CreateLabel(ctx, "go")
	l2 := fx.CreateLabel(ctx, "sql")
	t1 := fx.CreateTechnology(ctx, "postgres")

	req := testutil.NewJSONRequest(t, "POST", "/api/articles", map[string]any{
		"title":         "Hello",
		"date":          "2024-03-01",
		"content":       "<p>body</p>",
		"visibility":    "public",
		"labelIds":      []int64{l1, l2},
		"technologyIds": []int64{t1},
	})
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(req, u))
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Article
	rec.DecodeJSON(t, &created)
	if created.ID == 0 {
		t.Fatal("expected an id in the create response")
	}

	rec = testutil.NewRecorder()
	h.ServeView(rec, withID(testutil.NewRequest("GET", "/api/articles/x"), created.ID))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Article
	rec.DecodeJSON(t, &got)
	if got.Title != "Hello" || got.Visibility != models.VisibilityPublic {
		t.Errorf("scalars = %q %q", got.Title, got.Visibility)
	}
	if !reflect.DeepEqual(got.AuthorIDs, []string{u.ID}) {
		t.Errorf("AuthorIDs = %v", got.AuthorIDs)
	}
	if !reflect.DeepEqual(got.LabelIDs, []int64{l1, l2}) {
		t.Errorf("LabelIDs = %v", got.LabelIDs)
	}
	if !reflect.DeepEqual(got.TechnologyIDs, []int64{t1}) {
		t.Errorf("TechnologyIDs = %v", got.TechnologyIDs)
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=60" {
		t.Errorf("anonymous Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
}

func TestHandleCreate_Anonymous(t *testing.T) {
	h, _ := newHandler(t)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(t, "POST", "/api/articles", map[string]any{
		"title": "x", "date": "2024-01-01", "content": "y",
	}))
	rec.AssertStatus(t, http.StatusUnauthorized)
	if kind := rec.ErrorKind(t); kind != "authentication-missing" {
		t.Errorf("error kind = %q", kind)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateMember(ctx, "Writer")

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{"},
		{"missing title", map[string]any{"date": "2024-01-01", "content": "x"}},
		{"bad date", map[string]any{"title": "t", "date": "01/02/2024", "content": "x"}},
		{"bad visibility", map[string]any{"title": "t", "date": "2024-01-01", "content": "x", "visibility": "secret"}},
		{"unknown label", map[string]any{"title": "t", "date": "2024-01-01", "content": "x", "labelIds": []int64{999}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/articles", tt.body), u))
			rec.AssertStatus(t, http.StatusBadRequest)
			if kind := rec.ErrorKind(t); kind != "validation-failed" {
				t.Errorf("error kind = %q", kind)
			}
		})
	}
	if n := testutil.CountRows(t, fx.DB(), "articles", ""); n != 0 {
		t.Errorf("articles = %d after rejected creates", n)
	}
}

func TestHandleUpdate_ReplacesLabels(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateMember(ctx, "Owner")
	l1 := fx.CreateLabel(ctx, "one")
	l2 := fx.CreateLabel(ctx, "two")
	l3 := fx.CreateLabel(ctx, "three")
	id := fx.CreateArticle(ctx, "A", models.VisibilityPublic, u.ID)
	fx.TagArticle(ctx, id, []int64{l1, l2}, nil)

	req := testutil.NewJSONRequest(t, "PATCH", "/api/articles/x", map[string]any{"labelIds": []int64{l2, l3}})
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.WithUser(req, u), id))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Article
	rec.DecodeJSON(t, &got)
	if !reflect.DeepEqual(got.LabelIDs, []int64{l2, l3}) {
		t.Errorf("LabelIDs = %v, want exactly [%d %d]", got.LabelIDs, l2, l3)
	}
	if got.Title != "A" {
		t.Errorf("Title changed to %q", got.Title)
	}
}

func TestHandleUpdate_RollsBackOnFailure(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateMember(ctx, "Owner")
	l1 := fx.CreateLabel(ctx, "one")
	l2 := fx.CreateLabel(ctx, "two")
	id := fx.CreateArticle(ctx, "Before", models.VisibilityPublic, u.ID)
	fx.TagArticle(ctx, id, []int64{l1}, nil)
	fx.FailOnInsert(ctx, "article_labels", "label_id", l2)

	req := testutil.NewJSONRequest(t, "PATCH", "/api/articles/x", map[string]any{
		"title":    "After",
		"labelIds": []int64{l2},
	})
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.WithUser(req, u), id))
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, "unclassified store error")

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Title != "Before" {
		t.Errorf("Title = %q, want the update rolled back", a.Title)
	}
	if !reflect.DeepEqual(a.LabelIDs, []int64{l1}) {
		t.Errorf("LabelIDs = %v, want [%d]", a.LabelIDs, l1)
	}
}

func TestHandleDelete_ForbiddenForNonOwner(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateMember(ctx, "Owner")
	stranger := fx.CreateMember(ctx, "Stranger")
	id := fx.CreateArticle(ctx, "Keep me", models.VisibilityPublic, owner.ID)
	fx.CreateArticleComment(ctx, id, owner.ID, "first")

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/api/articles/x"), stranger), id))
	rec.AssertStatus(t, http.StatusForbidden)

	if n := testutil.CountRows(t, fx.DB(), "articles", "id = $1", id); n != 1 {
		t.Error("article deleted by a non-owner")
	}
	if n := testutil.CountRows(t, fx.DB(), "comments", "article_id = $1", id); n != 1 {
		t.Error("comments touched by a forbidden delete")
	}
}

func TestHandleDelete_OwnerAndElevated(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateMember(ctx, "Owner")
	manager := fx.CreateManager(ctx, "Mod")
	mine := fx.CreateArticle(ctx, "Mine", models.VisibilityPublic, owner.ID)
	other := fx.CreateArticle(ctx, "Other", models.VisibilityPublic, owner.ID)
	label := fx.CreateLabel(ctx, "l")
	fx.TagArticle(ctx, mine, []int64{label}, nil)
	fx.CreateArticleComment(ctx, mine, manager.ID, "c")

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), owner), mine))
	rec.AssertStatus(t, http.StatusNoContent)

	for _, table := range []string{"article_labels", "article_authors", "comments"} {
		if n := testutil.CountRows(t, fx.DB(), table, "article_id = $1", mine); n != 0 {
			t.Errorf("%s rows left for deleted article: %d", table, n)
		}
	}

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), manager), other))
	rec.AssertStatus(t, http.StatusNoContent)
	if n := testutil.CountRows(t, fx.DB(), "articles", ""); n != 0 {
		t.Errorf("articles left = %d", n)
	}
}

func TestMutations_MissingAndAnonymous(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateMember(ctx, "U")
	id := fx.CreateArticle(ctx, "A", models.VisibilityPublic, u.ID)

	// Missing id is 404 even for a caller who owns nothing there.
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), u), id+100))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "PATCH", "/", map[string]any{"title": "x"}), u), id+100))
	rec.AssertStatus(t, http.StatusNotFound)

	// Anonymous is 401 whether or not the id exists.
	for _, target := range []int64{id, id + 100} {
		rec = testutil.NewRecorder()
		h.HandleDelete(rec, withID(testutil.NewRequest("DELETE", "/"), target))
		rec.AssertStatus(t, http.StatusUnauthorized)
	}

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewRequest("DELETE", "/"), "id", "abc"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeView_Visibility(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateGeneral(ctx, "Owner")
	general := fx.CreateGeneral(ctx, "General")
	member := fx.CreateMember(ctx, "Member")
	manager := fx.CreateManager(ctx, "Manager")

	preview := fx.CreateArticle(ctx, "P", models.VisibilityPreview, owner.ID)
	private := fx.CreateArticle(ctx, "S", models.VisibilityPrivate, owner.ID)

	anon := models.User{}
	tests := []struct {
		name   string
		caller models.User
		id     int64
		want   int
	}{
		{"preview anonymous", anon, preview, http.StatusUnauthorized},
		{"preview general", general, preview, http.StatusForbidden},
		{"preview member", member, preview, http.StatusForbidden},
		{"preview owner", owner, preview, http.StatusOK},
		{"preview manager", manager, preview, http.StatusOK},
		{"private anonymous", anon, private, http.StatusUnauthorized},
		{"private general", general, private, http.StatusForbidden},
		{"private member", member, private, http.StatusOK},
		{"private owner", owner, private, http.StatusOK},
		{"missing", member, private + 100, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withID(testutil.NewRequest("GET", "/"), tt.id)
			if tt.caller.ID != "" {
				req = testutil.WithUser(req, tt.caller)
			}
			rec := testutil.NewRecorder()
			h.ServeView(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestServeList_FiltersByVisibilityAndQuery(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateMember(ctx, "Owner")
	label := fx.CreateLabel(ctx, "go")
	fx.CreateArticle(ctx, "Public", models.VisibilityPublic, owner.ID)
	fx.CreateArticle(ctx, "Preview", models.VisibilityPreview, owner.ID)
	tagged := fx.CreateArticle(ctx, "Tagged", models.VisibilityPublic, owner.ID)
	fx.TagArticle(ctx, tagged, []int64{label}, nil)

	var body struct {
		Articles []models.Article `json:"articles"`
		Count    int              `json:"count"`
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/api/articles"))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	if body.Count != 2 || len(body.Articles) != 2 {
		t.Errorf("anonymous sees %d articles, want the 2 public ones", body.Count)
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest("GET", "/api/articles"), owner))
	rec.DecodeJSON(t, &body)
	if body.Count != 3 {
		t.Errorf("owner sees %d articles, want 3", body.Count)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("signed-in Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/api/articles?labelId="+strconv.FormatInt(label, 10)))
	rec.DecodeJSON(t, &body)
	if body.Count != 1 || body.Articles[0].ID != tagged {
		t.Errorf("labelId filter = %+v", body.Articles)
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/api/articles?authorId=nobody"))
	rec.DecodeJSON(t, &body)
	if body.Count != 0 || body.Articles == nil {
		t.Errorf("authorId filter must give an empty, non-null list: %s", rec.Body.String())
	}
}
