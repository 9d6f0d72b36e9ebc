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

func TestLearningSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningSessionRepo(db, testutil.Logger(t))

	userID := uuid.New()
	otherUser := uuid.New()

	created, err := repo.Create(dbc, &types.LearningSession{UserID: userID, TopicName: testutil.PtrString("algebra")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil || created.Status != types.SessionStatusActive {
		t.Fatalf("Create did not fill defaults: id=%s status=%q", created.ID, created.Status)
	}
	if created.StartedAt.IsZero() || created.LastSeenAt.IsZero() {
		t.Fatalf("Create did not stamp times")
	}

	got, err := repo.GetByID(dbc, created.ID)
	if err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): err=%v got=%v", err, missing)
	}

	active, err := repo.GetActiveByUser(dbc, userID, testutil.PtrString(" algebra "))
	if err != nil || active == nil || active.ID != created.ID {
		t.Fatalf("GetActiveByUser(algebra): err=%v got=%v", err, active)
	}
	if none, err := repo.GetActiveByUser(dbc, userID, nil); err != nil || none != nil {
		t.Fatalf("GetActiveByUser(nil topic) should not match topical session: err=%v got=%v", err, none)
	}
	if none, err := repo.GetActiveByUser(dbc, otherUser, testutil.PtrString("algebra")); err != nil || none != nil {
		t.Fatalf("GetActiveByUser(other user): err=%v got=%v", err, none)
	}

	endedAt := time.Now().UTC()
	if err := repo.UpdateFields(dbc, created.ID, map[string]any{
		"status":   types.SessionStatusCompleted,
		"ended_at": endedAt,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if none, err := repo.GetActiveByUser(dbc, userID, testutil.PtrString("algebra")); err != nil || none != nil {
		t.Fatalf("completed session still active: err=%v got=%v", err, none)
	}

	testutil.SeedSession(t, ctx, tx, userID, nil, types.SessionStatusActive)
	testutil.SeedSession(t, ctx, tx, otherUser, nil, types.SessionStatusActive)

	rows, err := repo.ListByUser(dbc, userID, 0)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
	rows, err = repo.ListByUser(dbc, userID, 1)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser(limit=1): err=%v len=%d", err, len(rows))
	}
}

func TestCompleteActiveByUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningSessionRepo(db, testutil.Logger(t))

	userID := uuid.New()
	algebra := testutil.SeedSession(t, ctx, tx, userID, testutil.PtrString("algebra"), types.SessionStatusActive)
	untitled := testutil.SeedSession(t, ctx, tx, userID, nil, types.SessionStatusActive)

	endedAt := time.Now().UTC()
	n, err := repo.CompleteActiveByUser(dbc, userID, testutil.PtrString("algebra"), endedAt)
	if err != nil || n != 1 {
		t.Fatalf("CompleteActiveByUser: err=%v n=%d", err, n)
	}
	got, err := repo.GetByID(dbc, algebra.ID)
	if err != nil || got.Status != types.SessionStatusCompleted || got.EndedAt == nil {
		t.Fatalf("algebra session not completed: err=%v got=%+v", err, got)
	}
	if other, err := repo.GetByID(dbc, untitled.ID); err != nil || other.Status != types.SessionStatusActive {
		t.Fatalf("untitled session should stay active: err=%v got=%+v", err, other)
	}
	if n, err := repo.CompleteActiveByUser(dbc, userID, testutil.PtrString("algebra"), endedAt); err != nil || n != 0 {
		t.Fatalf("second CompleteActiveByUser: err=%v n=%d", err, n)
	}
}
