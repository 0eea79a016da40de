// Package vault reads Markdown notes from a local vault directory.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.NoteReader = (*Reader)(nil)

// noteExt is the only extension listed and resolved.
const noteExt = ".md"

// Reader resolves note identifiers against a vault root.
//
// An identifier may be a vault-relative path with or without the .md
// extension, or a bare note name as used in wiki links ("Meeting" or
// "[[Meeting]]"), which matches by file name anywhere in the vault.
type Reader struct {
	root string
}

// NewReader creates a reader for the vault at root.
func NewReader(root string) (*Reader, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("%w: vault path is not set", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: vault path %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return &Reader{root: abs}, nil
}

// Root returns the absolute vault root.
func (r *Reader) Root() string {
	return r.root
}

// ReadNote loads a note's content and tags.
func (r *Reader) ReadNote(ctx context.Context, identifier string) (*domain.Note, error) {
	rel, err := r.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("note %q: %w", identifier, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read note %q: %w", identifier, err)
	}

	content := string(data)
	return &domain.Note{
		Identifier: rel,
		Path:       rel,
		Content:    content,
		Tags:       ExtractTags(content),
	}, nil
}

// ListNotes returns every Markdown note in the vault, sorted by path.
// Hidden files and directories (such as .obsidian) are skipped.
func (r *Reader) ListNotes(ctx context.Context) ([]domain.NoteRef, error) {
	var refs []domain.NoteRef

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == r.root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isNote(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		refs = append(refs, newRef(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// resolve maps an identifier to a vault-relative slash path.
func (r *Reader) resolve(ctx context.Context, identifier string) (string, error) {
	id := strings.TrimSpace(identifier)
	id = strings.TrimSuffix(strings.TrimPrefix(id, "[["), "]]")
	// Wiki links may carry an alias or heading: [[Note|alias]], [[Note#Heading]].
	if i := strings.IndexAny(id, "|#"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSpace(filepath.ToSlash(id))
	if id == "" {
		return "", domain.NewValidationError("note", "note identifier is required")
	}

	if filepath.IsAbs(id) {
		rel, err := filepath.Rel(r.root, filepath.Clean(id))
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("%w: %s is outside the vault", domain.ErrInvalidInput, identifier)
		}
		id = filepath.ToSlash(rel)
	}

	clean := filepath.ToSlash(filepath.Clean(id))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s is outside the vault", domain.ErrInvalidInput, identifier)
	}
	if !strings.EqualFold(filepath.Ext(clean), noteExt) {
		clean += noteExt
	}

	if _, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(clean))); err == nil {
		return clean, nil
	}
	if strings.Contains(clean, "/") {
		return "", fmt.Errorf("note %q: %w", identifier, domain.ErrNotFound)
	}

	// Bare name: match by file name anywhere in the vault.
	refs, err := r.ListNotes(ctx)
	if err != nil {
		return "", err
	}
	for _, ref := range refs {
		if strings.EqualFold(filepath.Base(ref.Path), clean) {
			return ref.Path, nil
		}
	}
	return "", fmt.Errorf("note %q: %w", identifier, domain.ErrNotFound)
}

func newRef(rel string) domain.NoteRef {
	name := filepath.Base(rel)
	return domain.NoteRef{
		Path: rel,
		Name: strings.TrimSuffix(name, filepath.Ext(name)),
	}
}

func isNote(name string) bool {
	return strings.EqualFold(filepath.Ext(name), noteExt)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
