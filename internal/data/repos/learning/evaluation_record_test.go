package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tutorlog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tutorlog-backend/internal/domain"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
)

func TestEvaluationRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEvaluationRecordRepo(db, testutil.Logger(t))

	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec, err := repo.Create(dbc, &types.EvaluationRecord{
		UserID:      userID,
		Evaluation:  "incorrect",
		ErrorType:   testutil.PtrString("sign_error"),
		TopicName:   testutil.PtrString("algebra"),
		EvaluatedAt: base,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Fatalf("Create did not assign id")
	}

	testutil.SeedEvaluation(t, ctx, tx, userID, "correct", nil, nil, base.Add(2*time.Minute))
	testutil.SeedEvaluation(t, ctx, tx, userID, "partial", nil, nil, base.Add(time.Minute))
	testutil.SeedEvaluation(t, ctx, tx, uuid.New(), "correct", nil, nil, base.Add(time.Hour))

	rows, err := repo.ListRecentByUser(dbc, userID, 0)
	if err != nil {
		t.Fatalf("ListRecentByUser: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ListRecentByUser len=%d want 3", len(rows))
	}
	want := []string{"correct", "partial", "incorrect"}
	for i, r := range rows {
		if r.Evaluation != want[i] {
			t.Fatalf("row %d evaluation=%q want %q", i, r.Evaluation, want[i])
		}
	}
	if rows[2].ErrorType == nil || *rows[2].ErrorType != "sign_error" {
		t.Fatalf("error_type not persisted: %v", rows[2].ErrorType)
	}

	rows, err = repo.ListRecentByUser(dbc, userID, 2)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListRecentByUser(limit=2): err=%v len=%d", err, len(rows))
	}
}

func TestEvaluationRecordRepoCapsAtMax(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewEvaluationRecordRepo(db, testutil.Logger(t))
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxRecentEvaluations+5; i++ {
		testutil.SeedEvaluation(t, ctx, tx, userID, "correct", nil, nil, base.Add(time.Duration(i)*time.Second))
	}

	rows, err := repo.ListRecentByUser(dbctx.Context{Ctx: ctx, Tx: tx}, userID, 500)
	if err != nil {
		t.Fatalf("ListRecentByUser: %v", err)
	}
	if len(rows) != MaxRecentEvaluations {
		t.Fatalf("len=%d want %d", len(rows), MaxRecentEvaluations)
	}
	if !rows[0].EvaluatedAt.Equal(base.Add(time.Duration(MaxRecentEvaluations+4) * time.Second)) {
		t.Fatalf("newest record not first: %s", rows[0].EvaluatedAt)
	}
}
