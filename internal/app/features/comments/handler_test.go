package comments_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dalemusser/folio/internal/app/features/comments"
	"github.com/dalemusser/folio/internal/app/store/content"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*comments.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return comments.NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func withID(r *http.Request, id int64) *http.Request {
	return testutil.WithChiURLParam(r, "id", strconv.FormatInt(id, 10))
}

func TestHandleCreate(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateMember(ctx, "Owner")
	reader := fx.CreateGeneral(ctx, "Reader")
	pub := fx.CreateArticle(ctx, "Pub", models.VisibilityPublic, owner.ID)
	hidden := fx.CreateArticle(ctx, "Hidden", models.VisibilityPreview, owner.ID)

	create := h.HandleCreate(content.Articles)

	rec := testutil.NewRecorder()
	create(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "POST", "/", map[string]string{"body": "great <b>post</b>"}), reader), pub))
	rec.AssertStatus(t, http.StatusCreated)
	var c models.Comment
	rec.DecodeJSON(t, &c)
	if c.Body != "great post" || c.UserID != reader.ID {
		t.Errorf("comment = %+v", c)
	}

	// A Preview article is invisible to a general non-owner, so no comments.
	rec = testutil.NewRecorder()
	create(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "POST", "/", map[string]string{"body": "sneaky"}), reader), hidden))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	create(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "POST", "/", map[string]string{"body": "x"}), reader), hidden+100))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	create(rec, withID(testutil.NewJSONRequest(t, "POST", "/", map[string]string{"body": "anon"}), pub))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	create(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "POST", "/", map[string]string{"body": "   "}), reader), pub))
	rec.AssertStatus(t, http.StatusBadRequest)

	if n := testutil.CountRows(t, fx.DB(), "comments", ""); n != 1 {
		t.Errorf("comments = %d, want 1", n)
	}
}

func TestServeList_ThroughRouter(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateMember(ctx, "Owner")
	work := fx.CreateWork(ctx, "W", models.VisibilityPublic, owner.ID)
	private := fx.CreateWork(ctx, "P", models.VisibilityPrivate, owner.ID)
	fx.CreateWorkComment(ctx, work, owner.ID, "one")
	fx.CreateWorkComment(ctx, work, owner.ID, "two")

	sm := testutil.NewSessionManager(t)
	r := chi.NewRouter()
	r.Route("/api/works", func(wr chi.Router) {
		wr.Mount("/{id}/comments", comments.EntityRoutes(h, sm, content.Works))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/works/"+strconv.FormatInt(work, 10)+"/comments", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Comments []models.Comment `json:"comments"`
		Count    int              `json:"count"`
	}
	(&testutil.ResponseRecorder{ResponseRecorder: rec}).DecodeJSON(t, &body)
	if body.Count != 2 || body.Comments[0].Body != "one" {
		t.Errorf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/works/"+strconv.FormatInt(private, 10)+"/comments", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list on private work = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/works/"+strconv.FormatInt(work, 10)+"/comments", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous POST through router = %d, want 401", rec.Code)
	}
}

func TestHandleUpdate_AuthorOnly(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateGeneral(ctx, "Author")
	admin := fx.CreateAdmin(ctx, "Admin")
	art := fx.CreateArticle(ctx, "A", models.VisibilityPublic, admin.ID)
	id := fx.CreateArticleComment(ctx, art, author.ID, "orig")

	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "PATCH", "/", map[string]string{"body": "admin edit"}), admin), id))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "PATCH", "/", map[string]string{"body": "edited"}), author), id))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"body":"edited"`)

	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "PATCH", "/", map[string]string{"body": "x"}), author), id+100))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete_AuthorOrElevated(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateMember(ctx, "Author")
	other := fx.CreateMember(ctx, "Other")
	mod := fx.CreateManager(ctx, "Mod")
	art := fx.CreateArticle(ctx, "A", models.VisibilityPublic, other.ID)
	c1 := fx.CreateArticleComment(ctx, art, author.ID, "one")
	c2 := fx.CreateArticleComment(ctx, art, author.ID, "two")

	// Owning the article does not let you delete other people's comments.
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), other), c1))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), author), c1))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), mod), c2))
	rec.AssertStatus(t, http.StatusNoContent)

	if n := testutil.CountRows(t, fx.DB(), "comments", ""); n != 0 {
		t.Errorf("comments left = %d", n)
	}
}
