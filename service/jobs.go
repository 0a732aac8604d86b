package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	"synerx-dashboard/entities"
	"synerx-dashboard/repository"
)

// JobCanceller asks the upstream backend to stop a running job.
type JobCanceller interface {
	CancelJob(ctx context.Context, jobId string) error
}

// JobFeed is the single source of truth for job state on the dashboard. It is
// fed by upstream WebSocket snapshots and by broker progress events, and every
// change is pushed to subscribers wholesale.
type JobFeed interface {
	ApplySnapshot(ctx context.Context, jobs []dto.JobSnapshot)
	ApplyProgress(ctx context.Context, msg dto.JobProgressMessage) error
	Track(ctx context.Context, job dto.JobSnapshot)
	Snapshot() []dto.JobSnapshot
	Subscribe() (<-chan []dto.JobSnapshot, func())
	Cancel(ctx context.Context, jobId uuid.UUID) error
}

type jobFeed struct {
	repo      repository.Repository
	canceller JobCanceller

	mu          sync.RWMutex
	jobs        map[uuid.UUID]dto.JobSnapshot
	subscribers map[chan []dto.JobSnapshot]struct{}
}

func NewJobFeed(repo repository.Repository, canceller JobCanceller) JobFeed {
	return &jobFeed{
		repo:        repo,
		canceller:   canceller,
		jobs:        make(map[uuid.UUID]dto.JobSnapshot),
		subscribers: make(map[chan []dto.JobSnapshot]struct{}),
	}
}

// ApplySnapshot replaces the job table wholesale, matching the upstream feed
// semantics where each message is the complete job list.
func (f *jobFeed) ApplySnapshot(ctx context.Context, jobs []dto.JobSnapshot) {
	f.mu.Lock()
	f.jobs = make(map[uuid.UUID]dto.JobSnapshot, len(jobs))
	for _, job := range jobs {
		f.jobs[job.JobId] = job
	}
	f.mu.Unlock()

	f.broadcast()
}

func (f *jobFeed) ApplyProgress(ctx context.Context, msg dto.JobProgressMessage) error {
	f.mu.Lock()
	job, ok := f.jobs[msg.JobId]
	if !ok {
		job = dto.JobSnapshot{JobId: msg.JobId, VideoId: msg.VideoId}
	}
	job.Status = msg.Status
	job.Progress = msg.Progress
	job.Message = msg.Message
	job.ElapsedSeconds = msg.ElapsedSeconds
	job.UpdatedAt = time.Now()
	f.jobs[msg.JobId] = job
	f.mu.Unlock()

	f.broadcast()

	if err := f.repo.UpdateJobStatus(ctx, msg.JobId, msg.Status, msg.Progress, msg.Message, msg.ElapsedSeconds); err != nil {
		return err
	}

	if msg.VideoId == uuid.Nil {
		return nil
	}

	switch msg.Status {
	case constant.JobStatusProcessing:
		return f.repo.UpdateVideoStatus(ctx, msg.VideoId, constant.VideoStatusProcessing, msg.Progress)
	case constant.JobStatusCompleted:
		return f.repo.UpdateVideoStatus(ctx, msg.VideoId, constant.VideoStatusCompleted, 100)
	case constant.JobStatusFailed:
		return f.repo.UpdateVideoStatus(ctx, msg.VideoId, constant.VideoStatusFailed, msg.Progress)
	case constant.JobStatusCancelled:
		return f.repo.UpdateVideoStatus(ctx, msg.VideoId, constant.VideoStatusCancelled, msg.Progress)
	}
	return nil
}

// Track registers a freshly submitted job so it shows up before the first
// upstream snapshot arrives.
func (f *jobFeed) Track(ctx context.Context, job dto.JobSnapshot) {
	f.mu.Lock()
	f.jobs[job.JobId] = job
	f.mu.Unlock()

	f.broadcast()
}

func (f *jobFeed) Snapshot() []dto.JobSnapshot {
	f.mu.RLock()
	jobs := make([]dto.JobSnapshot, 0, len(f.jobs))
	for _, job := range f.jobs {
		jobs = append(jobs, job)
	}
	f.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].UpdatedAt.After(jobs[j].UpdatedAt)
	})
	return jobs
}

func (f *jobFeed) Subscribe() (<-chan []dto.JobSnapshot, func()) {
	ch := make(chan []dto.JobSnapshot, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *jobFeed) broadcast() {
	snapshot := f.Snapshot()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber; it will catch up on the next update.
		}
	}
}

func (f *jobFeed) Cancel(ctx context.Context, jobId uuid.UUID) error {
	if err := f.canceller.CancelJob(ctx, jobId.String()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobId.String()).Msg("failed to cancel job upstream")
		return err
	}

	videoId := f.videoIdFor(jobId)
	if videoId == uuid.Nil {
		// Not in the in-memory table; the job may predate this process.
		if job, err := f.repo.FindJobById(ctx, jobId); err == nil {
			videoId = job.VideoID
		}
	}

	return f.ApplyProgress(ctx, dto.JobProgressMessage{
		JobId:   jobId,
		VideoId: videoId,
		Status:  constant.JobStatusCancelled,
		Message: "cancelled by user",
	})
}

func (f *jobFeed) videoIdFor(jobId uuid.UUID) uuid.UUID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if job, ok := f.jobs[jobId]; ok {
		return job.VideoId
	}
	return uuid.Nil
}

// HydrateFromRepo seeds the table with unfinished jobs after a restart.
func HydrateFromRepo(ctx context.Context, feed JobFeed, repo repository.Repository) error {
	jobs, err := repo.ListJobs(ctx, true)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		feed.Track(ctx, snapshotFromEntity(job))
	}
	return nil
}

func snapshotFromEntity(job *entities.Job) dto.JobSnapshot {
	return dto.JobSnapshot{
		JobId:          job.ID,
		VideoId:        job.VideoID,
		Status:         job.Status,
		Progress:       job.Progress,
		Message:        job.Message,
		ElapsedSeconds: job.ElapsedSeconds,
		UpdatedAt:      job.UpdatedAt,
	}
}
