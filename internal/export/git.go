package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/rs/zerolog"

	"github.com/minitex/ipregister/internal/config"
	"github.com/minitex/ipregister/internal/core"
	"github.com/minitex/ipregister/internal/model"
)

// GitExporter mirrors the registered ranges of an organization into the proxy
// configuration repository. The access-list file holds one block per
// organization, fenced by marker comments, with one range per line. Each
// completed change rewrites its organization's block, commits, and pushes.
type GitExporter struct {
	ranges *core.RangeService
	cfg    *config.Config

	// Serializes exports: concurrent completions would otherwise race on the
	// worktree.
	mu sync.Mutex
}

func NewGitExporter(cfg *config.Config, ranges *core.RangeService) *GitExporter {
	return &GitExporter{ranges: ranges, cfg: cfg}
}

func (e *GitExporter) Export(ctx context.Context, change *model.IpChange) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ranges, err := e.ranges.ListByOrganization(ctx, change.OrganizationID)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(ranges))
	for _, r := range ranges {
		lines = append(lines, r.Title)
	}

	repo, err := e.openOrClone(ctx)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	path := filepath.Join(e.cfg.ExportRepoDir, e.cfg.ExportFile)
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read access list: %w", err)
	}

	updated := ReplaceBlock(string(existing), change.OrganizationID, lines)
	if updated == string(existing) {
		zerolog.Ctx(ctx).Debug().Str("organization", change.OrganizationID).
			Msg("access list unchanged, skipping export commit")
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write access list: %w", err)
	}

	if _, err := wt.Add(e.cfg.ExportFile); err != nil {
		return fmt.Errorf("stage access list: %w", err)
	}
	_, err = wt.Commit(
		fmt.Sprintf("Update IP ranges for organization %s", change.OrganizationID),
		&git.CommitOptions{
			Author: &object.Signature{
				Name:  e.cfg.ExportCommitterName,
				Email: e.cfg.ExportCommitterEmail,
				When:  time.Now(),
			},
		})
	if err != nil {
		return fmt.Errorf("commit access list: %w", err)
	}

	if e.cfg.ExportRemoteURL == "" {
		return nil
	}
	auth, err := e.auth()
	if err != nil {
		return err
	}
	if err := repo.PushContext(ctx, &git.PushOptions{Auth: auth}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push access list: %w", err)
	}
	return nil
}

func (e *GitExporter) openOrClone(ctx context.Context) (*git.Repository, error) {
	repo, err := git.PlainOpen(e.cfg.ExportRepoDir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open export repo: %w", err)
	}

	if e.cfg.ExportRemoteURL == "" {
		repo, err = git.PlainInit(e.cfg.ExportRepoDir, false)
		if err != nil {
			return nil, fmt.Errorf("init export repo: %w", err)
		}
		return repo, nil
	}

	auth, err := e.auth()
	if err != nil {
		return nil, err
	}
	repo, err = git.PlainCloneContext(ctx, e.cfg.ExportRepoDir, false, &git.CloneOptions{
		URL:  e.cfg.ExportRemoteURL,
		Auth: auth,
	})
	if err != nil {
		return nil, fmt.Errorf("clone export repo: %w", err)
	}
	return repo, nil
}

func (e *GitExporter) auth() (transport.AuthMethod, error) {
	if e.cfg.ExportSSHKeyPath == "" {
		return nil, nil
	}
	keys, err := gitssh.NewPublicKeysFromFile("git", e.cfg.ExportSSHKeyPath, "")
	if err != nil {
		return nil, fmt.Errorf("load export deploy key: %w", err)
	}
	return keys, nil
}

func beginMarker(orgID string) string { return "# BEGIN organization " + orgID }
func endMarker(orgID string) string   { return "# END organization " + orgID }

// ReplaceBlock rewrites the organization's fenced block within the access
// list, leaving every other block untouched. A missing block is appended; an
// empty line set removes the block entirely.
func ReplaceBlock(content, orgID string, lines []string) string {
	begin := beginMarker(orgID)
	end := endMarker(orgID)

	var block strings.Builder
	if len(lines) > 0 {
		block.WriteString(begin + "\n")
		for _, line := range lines {
			block.WriteString(line + "\n")
		}
		block.WriteString(end + "\n")
	}

	startIdx := strings.Index(content, begin)
	if startIdx == -1 {
		if block.Len() == 0 {
			return content
		}
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + block.String()
	}

	endIdx := strings.Index(content[startIdx:], end)
	if endIdx == -1 {
		// Truncated block; drop everything from the begin marker on.
		return content[:startIdx] + block.String()
	}
	tail := content[startIdx+endIdx+len(end):]
	tail = strings.TrimPrefix(tail, "\n")
	return content[:startIdx] + block.String() + tail
}
