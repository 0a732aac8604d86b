package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewRepo(db), mock
}

func TestFindVideoById(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "status", "progress"}).
		AddRow(id.String(), "intersection.mp4", "completed", 100)

	mock.ExpectQuery(`SELECT (.+) FROM "videos" WHERE id = (.+)`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	video, err := repo.FindVideoById(context.Background(), id)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if video.Name != "intersection.mp4" || video.Status != constant.VideoStatusCompleted {
		t.Fatalf("unexpected video: %+v", video)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindVideoByObject(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "original_object"}).
		AddRow(id.String(), "intersection.mp4", "uploads/intersection.mp4")

	mock.ExpectQuery(`SELECT (.+) FROM "videos" WHERE original_object = (.+)`).
		WithArgs("uploads/intersection.mp4", 1).
		WillReturnRows(rows)

	video, err := repo.FindVideoByObject(context.Background(), "uploads/intersection.mp4")
	if err != nil {
		t.Fatalf("find video by object: %v", err)
	}
	if video.ID != id {
		t.Fatalf("unexpected video: %+v", video)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteVideoRemovesRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "videos" WHERE id = (.+)`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteVideo(context.Background(), id); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListVideosAppliesFilterAndPaging(t *testing.T) {
	repo, mock := newMockRepo(t)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "videos" WHERE created_at >= (.+)`).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(35))

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(uuid.New().String(), "a.mp4").
		AddRow(uuid.New().String(), "b.mp4")
	mock.ExpectQuery(`SELECT (.+) FROM "videos" WHERE created_at >= (.+) ORDER BY created_at DESC LIMIT (.+) OFFSET (.+)`).
		WithArgs(from, 10, 10).
		WillReturnRows(rows)

	videos, total, err := repo.ListVideos(context.Background(), dto.VideoFilter{
		DateFrom: &from,
		SortDesc: true,
		Page:     2,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if total != 35 {
		t.Fatalf("expected total 35, got %d", total)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListVideosRejectsUnknownSortColumn(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "videos"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// An unknown sort column must fall back to created_at, never reach SQL.
	mock.ExpectQuery(`SELECT (.+) FROM "videos" ORDER BY created_at ASC LIMIT (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.ListVideos(context.Background(), dto.VideoFilter{
		SortBy: `name; DROP TABLE videos`,
	})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateJobStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "jobs" SET (.+) WHERE id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateJobStatus(context.Background(), id, constant.JobStatusProcessing, 50, "halfway", 12.5)
	if err != nil {
		t.Fatalf("update job: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountVideos(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "videos"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountVideos(context.Background())
	if err != nil {
		t.Fatalf("count videos: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12, got %d", count)
	}
}
