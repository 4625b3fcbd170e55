package tags_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/dalemusser/folio/internal/app/features/tags"
	tagstore "github.com/dalemusser/folio/internal/app/store/tags"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

func withID(r *http.Request, id int64) *http.Request {
	return testutil.WithChiURLParam(r, "id", strconv.FormatInt(id, 10))
}

func TestHandleCreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tags.NewHandler(db, tagstore.Technologies, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateGeneral(ctx, "Anyone")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": "Go"}), u))
	rec.AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": "go"}), u))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": "Rust"}))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/api/technologies"))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Technologies []models.Tag `json:"technologies"`
		Count        int          `json:"count"`
	}
	rec.DecodeJSON(t, &body)
	if body.Count != 1 || body.Technologies[0].Name != "Go" {
		t.Errorf("list = %+v", body)
	}
}

func TestHandleRenameAndDelete_ElevatedOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tags.NewHandler(db, tagstore.Labels, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fx.CreateMember(ctx, "Member")
	admin := fx.CreateAdmin(ctx, "Admin")
	label := fx.CreateLabel(ctx, "old")
	art := fx.CreateArticle(ctx, "A", models.VisibilityPublic, member.ID)
	work := fx.CreateWork(ctx, "W", models.VisibilityPublic, member.ID)
	fx.TagArticle(ctx, art, []int64{label}, nil)
	fx.TagWork(ctx, work, []int64{label}, nil)

	rec := testutil.NewRecorder()
	h.HandleRename(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "PATCH", "/", map[string]string{"name": "new"}), member), label))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleRename(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "PATCH", "/", map[string]string{"name": "new"}), admin), label))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"name":"new"`)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), member), label))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), admin), label))
	rec.AssertStatus(t, http.StatusNoContent)

	if n := testutil.CountRows(t, db, "article_labels", ""); n != 0 {
		t.Errorf("article links left = %d", n)
	}
	if n := testutil.CountRows(t, db, "work_labels", ""); n != 0 {
		t.Errorf("work links left = %d", n)
	}

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.WithUser(testutil.NewRequest("DELETE", "/"), admin), label))
	rec.AssertStatus(t, http.StatusNotFound)
}
