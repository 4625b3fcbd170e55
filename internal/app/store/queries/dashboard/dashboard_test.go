package dashboard_test

import (
	"testing"

	"github.com/dalemusser/folio/internal/app/store/queries/dashboard"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
)

func TestLoad(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fx.CreateMember(ctx, "Me")
	other := fx.CreateMember(ctx, "Other")

	mine := fx.CreateArticle(ctx, "Mine", models.VisibilityPrivate, me.ID)
	shared := fx.CreateWork(ctx, "Shared", models.VisibilityPreview, other.ID, me.ID)
	fx.CreateArticle(ctx, "Not mine", models.VisibilityPublic, other.ID)
	notMine := fx.CreateWork(ctx, "Theirs", models.VisibilityPublic, other.ID)

	fx.CreateArticleComment(ctx, mine, other.ID, "nice")
	fx.CreateWorkComment(ctx, shared, other.ID, "also nice")
	fx.CreateWorkComment(ctx, notMine, me.ID, "not counted")

	res, err := dashboard.Load(ctx, db, me.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Articles) != 1 || res.Articles[0].ID != mine {
		t.Errorf("Articles = %+v", res.Articles)
	}
	if len(res.Works) != 1 || res.Works[0].ID != shared {
		t.Errorf("Works = %+v", res.Works)
	}
	if got := res.Works[0].AuthorIDs; len(got) != 2 {
		t.Errorf("shared work authors = %v", got)
	}
	if res.CommentsReceived != 2 {
		t.Errorf("CommentsReceived = %d, want 2", res.CommentsReceived)
	}
}

func TestLoad_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateGeneral(ctx, "New")
	res, err := dashboard.Load(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Articles == nil || res.Works == nil {
		t.Error("empty results must be non-nil slices")
	}
	if len(res.Articles) != 0 || len(res.Works) != 0 || res.CommentsReceived != 0 {
		t.Errorf("res = %+v", res)
	}
}
