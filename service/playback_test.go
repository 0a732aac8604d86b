package service

import (
	"context"
	"testing"
	"time"

	"synerx-dashboard/dto"
)

func TestPageCacheHit(t *testing.T) {
	calls := 0
	svc := newPlaybackService(func(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error) {
		calls++
		return dto.VideoPage{Page: filter.Page, TotalCount: 42}, nil
	})

	filter := dto.VideoFilter{Page: 1, PageSize: 20, SortBy: "created_at", SortDesc: true}

	first, err := svc.Page(context.Background(), filter)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	second, err := svc.Page(context.Background(), filter)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 loader call, got %d", calls)
	}
	if first.TotalCount != second.TotalCount {
		t.Fatalf("cache returned different page")
	}
}

func TestPageCacheKeyedByFilter(t *testing.T) {
	calls := 0
	svc := newPlaybackService(func(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error) {
		calls++
		return dto.VideoPage{Page: filter.Page}, nil
	})

	base := dto.VideoFilter{Page: 1, PageSize: 20}
	if _, err := svc.Page(context.Background(), base); err != nil {
		t.Fatal(err)
	}

	next := base
	next.Page = 2
	if _, err := svc.Page(context.Background(), next); err != nil {
		t.Fatal(err)
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dated := base
	dated.DateFrom = &from
	if _, err := svc.Page(context.Background(), dated); err != nil {
		t.Fatal(err)
	}

	if calls != 3 {
		t.Fatalf("expected 3 loader calls for 3 distinct filters, got %d", calls)
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	calls := 0
	svc := newPlaybackService(func(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error) {
		calls++
		return dto.VideoPage{}, nil
	})

	filter := dto.VideoFilter{Page: 1, PageSize: 10}
	if _, err := svc.Page(context.Background(), filter); err != nil {
		t.Fatal(err)
	}

	svc.Invalidate()

	if _, err := svc.Page(context.Background(), filter); err != nil {
		t.Fatal(err)
	}

	if calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", calls)
	}
}

func TestPageLoaderErrorNotCached(t *testing.T) {
	calls := 0
	svc := newPlaybackService(func(ctx context.Context, filter dto.VideoFilter) (dto.VideoPage, error) {
		calls++
		if calls == 1 {
			return dto.VideoPage{}, context.DeadlineExceeded
		}
		return dto.VideoPage{}, nil
	})

	filter := dto.VideoFilter{Page: 1}
	if _, err := svc.Page(context.Background(), filter); err == nil {
		t.Fatalf("expected error from first load")
	}
	if _, err := svc.Page(context.Background(), filter); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected failed load not to be cached, got %d calls", calls)
	}
}
