package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
)

func TestApplySnapshotReplacesWholesale(t *testing.T) {
	feed := NewJobFeed(&fakeRepo{}, &fakeCanceller{})
	ctx := context.Background()

	old := uuid.New()
	feed.Track(ctx, dto.JobSnapshot{JobId: old, Status: constant.JobStatusProcessing})

	replacement := uuid.New()
	feed.ApplySnapshot(ctx, []dto.JobSnapshot{
		{JobId: replacement, Status: constant.JobStatusQueued},
	})

	jobs := feed.Snapshot()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after snapshot, got %d", len(jobs))
	}
	if jobs[0].JobId != replacement {
		t.Fatalf("expected snapshot to replace job table")
	}
}

func TestApplyProgressPersistsAndBroadcasts(t *testing.T) {
	repo := &fakeRepo{}
	feed := NewJobFeed(repo, &fakeCanceller{})
	ctx := context.Background()

	updates, cancel := feed.Subscribe()
	defer cancel()

	jobId := uuid.New()
	videoId := uuid.New()
	err := feed.ApplyProgress(ctx, dto.JobProgressMessage{
		JobId:    jobId,
		VideoId:  videoId,
		Status:   constant.JobStatusProcessing,
		Progress: 40,
		Message:  "tracking vehicles",
	})
	if err != nil {
		t.Fatalf("apply progress: %v", err)
	}

	select {
	case jobs := <-updates:
		if len(jobs) != 1 || jobs[0].Progress != 40 {
			t.Fatalf("unexpected broadcast: %+v", jobs)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected broadcast after progress update")
	}

	if len(repo.jobUpdates) != 1 || repo.jobUpdates[0] != jobId {
		t.Fatalf("expected job status persisted")
	}
	if len(repo.videoUpdates) != 1 || repo.videoUpdates[0] != videoId {
		t.Fatalf("expected video status persisted")
	}
}

func TestCancelGoesUpstreamFirst(t *testing.T) {
	repo := &fakeRepo{}
	canceller := &fakeCanceller{}
	feed := NewJobFeed(repo, canceller)
	ctx := context.Background()

	jobId := uuid.New()
	videoId := uuid.New()
	feed.Track(ctx, dto.JobSnapshot{JobId: jobId, VideoId: videoId, Status: constant.JobStatusProcessing})

	if err := feed.Cancel(ctx, jobId); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if len(canceller.cancelled) != 1 || canceller.cancelled[0] != jobId.String() {
		t.Fatalf("expected upstream cancel call")
	}

	jobs := feed.Snapshot()
	if len(jobs) != 1 || jobs[0].Status != constant.JobStatusCancelled {
		t.Fatalf("expected job marked cancelled, got %+v", jobs)
	}
}

func TestCancelUpstreamFailureDoesNotMutate(t *testing.T) {
	canceller := &fakeCanceller{err: context.DeadlineExceeded}
	feed := NewJobFeed(&fakeRepo{}, canceller)
	ctx := context.Background()

	jobId := uuid.New()
	feed.Track(ctx, dto.JobSnapshot{JobId: jobId, Status: constant.JobStatusProcessing})

	if err := feed.Cancel(ctx, jobId); err == nil {
		t.Fatalf("expected cancel error")
	}

	jobs := feed.Snapshot()
	if jobs[0].Status != constant.JobStatusProcessing {
		t.Fatalf("expected status unchanged after failed cancel, got %s", jobs[0].Status)
	}
}

func TestCancelUntrackedJobResolvesVideoFromRepo(t *testing.T) {
	jobId := uuid.New()
	videoId := uuid.New()
	repo := &fakeRepo{job: &entities.Job{ID: jobId, VideoID: videoId}}
	feed := NewJobFeed(repo, &fakeCanceller{})

	if err := feed.Cancel(context.Background(), jobId); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if len(repo.videoUpdates) != 1 || repo.videoUpdates[0] != videoId {
		t.Fatalf("expected video status update for repo-resolved video, got %v", repo.videoUpdates)
	}
}

func TestCancelUnknownJobSkipsVideoUpdate(t *testing.T) {
	repo := &fakeRepo{}
	feed := NewJobFeed(repo, &fakeCanceller{})

	if err := feed.Cancel(context.Background(), uuid.New()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if len(repo.jobUpdates) != 1 {
		t.Fatalf("expected job status persisted, got %d updates", len(repo.jobUpdates))
	}
	if len(repo.videoUpdates) != 0 {
		t.Fatalf("expected no video update without a known video id, got %v", repo.videoUpdates)
	}
}

func TestUnsubscribedChannelClosed(t *testing.T) {
	feed := NewJobFeed(&fakeRepo{}, &fakeCanceller{})

	updates, cancel := feed.Subscribe()
	cancel()

	if _, ok := <-updates; ok {
		t.Fatalf("expected channel closed after cancel")
	}

	// A broadcast after unsubscribe must not panic.
	feed.Track(context.Background(), dto.JobSnapshot{JobId: uuid.New()})
}
