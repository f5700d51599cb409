// Package filecontrol creates, moves, renames, deletes and searches files.
package filecontrol

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/safety"
)

const Name = "file_control"

// Operations understood by Do.
const (
	OpCreate = "create"
	OpMove   = "move"
	OpRename = "rename"
	OpDelete = "delete"
	OpSearch = "search"
)

type Handler struct {
	config *Config
	gate   safety.Checker
	logger logger.Logger
}

func NewHandler(cfg *Config, gate safety.Checker, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		gate:   gate,
		logger: log.WithFields(map[string]interface{}{"handler": Name}),
	}
}

// OpFromText picks the operation named in a command, or "".
func OpFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "delete") || strings.Contains(lower, "remove"):
		return OpDelete
	case strings.Contains(lower, "rename"):
		return OpRename
	case strings.Contains(lower, "move"):
		return OpMove
	case strings.Contains(lower, "create"):
		return OpCreate
	case strings.Contains(lower, "search") || strings.Contains(lower, "find"):
		return OpSearch
	}
	return ""
}

func (h *Handler) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || h.config.Root == "" {
		return p
	}
	return filepath.Join(h.config.Root, p)
}

func (h *Handler) Create(_ context.Context, path, content string) error {
	path = h.abs(path)
	if path == "" {
		return apperrors.NewInvalidArgumentError("path", "empty")
	}
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would create file", map[string]interface{}{"path": path})
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	return nil
}

func (h *Handler) Move(_ context.Context, src, dst string) error {
	src, dst = h.abs(src), h.abs(dst)
	if src == "" || dst == "" {
		return apperrors.NewInvalidArgumentError("path", "move needs a source and a destination")
	}
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would move", map[string]interface{}{"src": src, "dst": dst})
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	return nil
}

// Rename keeps src in its directory under newName.
func (h *Handler) Rename(_ context.Context, src, newName string) error {
	src = h.abs(src)
	if src == "" || newName == "" {
		return apperrors.NewInvalidArgumentError("path", "rename needs a source and a new name")
	}
	dst := filepath.Join(filepath.Dir(src), newName)
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would rename", map[string]interface{}{"src": src, "dst": dst})
		return nil
	}
	if err := os.Rename(src, dst); err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	return nil
}

// countItems returns 1 for a file, or the number of files under a
// directory.
func countItems(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 1, nil
	}
	count := 0
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

// Delete removes a file or tree. Anything above ConfirmThreshold items
// needs confirmation.
func (h *Handler) Delete(_ context.Context, path string) error {
	path = h.abs(path)
	if path == "" {
		return apperrors.NewInvalidArgumentError("path", "empty")
	}
	total, err := countItems(path)
	if err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	desc := fmt.Sprintf("delete %s (approx %d items)", path, total)
	if total > h.config.ConfirmThreshold && !h.gate.RequireConfirmation(desc) {
		return apperrors.NewSafetyRefusedError(desc)
	}
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would delete", map[string]interface{}{"path": path, "items": total})
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	return nil
}

// Search lists files under root whose name contains pattern,
// case-insensitively. Unreadable directories are skipped.
func (h *Handler) Search(_ context.Context, root, pattern string) []string {
	root = h.abs(root)
	if root == "" {
		root = "."
	}
	pattern = strings.ToLower(pattern)
	var out []string
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.Contains(strings.ToLower(d.Name()), pattern) {
			out = append(out, p)
		}
		return nil
	})
	return out
}

// ReadSmall returns at most MaxReadSize bytes of path.
func (h *Handler) ReadSmall(path string) (string, error) {
	f, err := os.Open(h.abs(path))
	if err != nil {
		return "", apperrors.NewCollaboratorFailedError(Name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.config.MaxReadSize))
	if err != nil {
		return "", apperrors.NewCollaboratorFailedError(Name, err)
	}
	return string(data), nil
}

// Do runs op against target. Move and rename read the second operand from
// arg. Search returns matches in meta under "matches".
func (h *Handler) Do(ctx context.Context, op, target, arg string) (map[string]interface{}, error) {
	meta := map[string]interface{}{"op": op, "path": target}
	var err error
	switch op {
	case OpCreate:
		err = h.Create(ctx, target, arg)
	case OpMove:
		err = h.Move(ctx, target, arg)
	case OpRename:
		err = h.Rename(ctx, target, arg)
	case OpDelete:
		err = h.Delete(ctx, target)
	case OpSearch:
		meta["matches"] = h.Search(ctx, "", target)
	default:
		err = apperrors.NewInvalidArgumentError("op", fmt.Sprintf("unsupported file operation %q", op))
	}
	return meta, err
}
