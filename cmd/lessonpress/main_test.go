package main

import (
	"errors"
	"testing"

	apperrors "github.com/brightsciences/lessonpress/internal/errors"
)

func TestExitCode(t *testing.T) {
	if got := exitCode(apperrors.ConfigRequired("content.root")); got != 2 {
		t.Errorf("expected exit 2 for config error, got %d", got)
	}
	if got := exitCode(apperrors.ValidationFailed("gradeLevel", "unrecognized")); got != 2 {
		t.Errorf("expected exit 2 for validation error, got %d", got)
	}
	if got := exitCode(apperrors.OutputError("out.pdf", errors.New("disk full"))); got != 1 {
		t.Errorf("expected exit 1 for output error, got %d", got)
	}
	if got := exitCode(errors.New("plain failure")); got != 1 {
		t.Errorf("expected exit 1 for plain error, got %d", got)
	}
}
