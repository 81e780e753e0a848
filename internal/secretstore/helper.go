package secretstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// HelperBackend invokes a sibling biometric-gated helper executable,
// passing it (get, service, account) and treating its trimmed stdout as
// the credential. A non-zero exit or empty output means "not stored
// here" (spec.md §4.1 tier 1), which this backend reports as
// ErrNotFound so Store falls through to the next tier.
//
// The exec-and-trim-stdout shape mirrors how the credential pack's
// external CLI resolvers (op read, aws ssm get-parameter) are invoked:
// run bounded by the caller's context, capture stdout only, trim
// leading and trailing whitespace, treat any non-zero exit as a miss.
type HelperBackend struct {
	// Path is the absolute path to the helper executable. If empty or
	// the file does not exist, Read always misses without attempting
	// to run anything.
	Path string
}

func (h *HelperBackend) Name() string { return "biometric helper" }

func (h *HelperBackend) Read(ctx context.Context, providerID string) (Secret, error) {
	if h.Path == "" {
		return Secret{}, fmt.Errorf("%w: no helper configured", ErrNotFound)
	}
	if _, err := os.Stat(h.Path); err != nil {
		return Secret{}, fmt.Errorf("%w: helper not present", ErrNotFound)
	}

	service := "thesystem/" + providerID
	cmd := exec.CommandContext(ctx, h.Path, "get", service, providerID)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return Secret{}, fmt.Errorf("%w: helper exited non-zero: %v", ErrNotFound, err)
	}

	trimmed := bytes.TrimSpace(stdout.Bytes())
	if len(trimmed) == 0 {
		return Secret{}, fmt.Errorf("%w: helper returned empty output", ErrNotFound)
	}
	return NewSecret(trimmed), nil
}
