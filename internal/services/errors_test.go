package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "get_iplayer", "download", "command failed", cause)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("expected wrapped error to match ErrExternalTool")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to retain the cause")
	}
	want := "external tool error: get_iplayer: download: command failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected nil marker to default to ErrTransient")
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIsCollaboratorFailure(t *testing.T) {
	if !IsCollaboratorFailure(Wrap(ErrExternalTool, "whisper", "transcribe", "", nil)) {
		t.Fatal("external tool errors are collaborator failures")
	}
	if !IsCollaboratorFailure(Wrap(ErrNotFound, "resolver", "stat", "", nil)) {
		t.Fatal("not-found errors are collaborator failures")
	}
	if IsCollaboratorFailure(errors.New("disk io error")) {
		t.Fatal("plain errors are not collaborator failures")
	}
}
