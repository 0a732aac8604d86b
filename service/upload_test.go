package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUploadRejectsDisallowedMIME(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewUploadService(nil, nil, publisher, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader("not a video"), "report.txt", "text/plain", nil)
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
	}

	if len(publisher.published) != 0 {
		t.Fatalf("expected no publish for rejected upload, got %d", len(publisher.published))
	}
}

func TestAllowedMIME(t *testing.T) {
	allowed := []string{"video/mp4", "video/webm", "Video/MP4", "video/quicktime", "video/avi", "video/x-msvideo"}
	for _, mime := range allowed {
		if !AllowedMIME(mime) {
			t.Fatalf("expected %s to be allowed", mime)
		}
	}

	rejected := []string{"image/jpeg", "application/pdf", "text/plain", "", "video/x-matroska"}
	for _, mime := range rejected {
		if AllowedMIME(mime) {
			t.Fatalf("expected %s to be rejected", mime)
		}
	}
}
