package listing

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yndnr/deckshare/internal/core/domain"
)

// Separator joins the share root and the relative path.
const Separator = "/"

// EntryFailure describes one entry dropped from a listing.
type EntryFailure struct {
	// Name is the raw entry name as returned by the filesystem.
	Name string
	// Err is the underlying failure, wrapped in domain.ErrEntryUnreadable.
	Err error
}

// Listing is the result of a successful List call.
type Listing struct {
	// Entries are in filesystem enumeration order. Never nil.
	Entries []domain.Entry
	// Failures are the entries that were dropped.
	Failures []EntryFailure
	// Hidden counts dot-prefixed entries left out by the hidden filter.
	Hidden int
	// Interrupted is set when the reader stopped before the end of the
	// directory. Entries holds what was read up to that point.
	Interrupted error
}

// Lister turns (root, relative path) pairs into listings.
type Lister struct {
	reader          DirReader
	logger          *slog.Logger
	rejectTraversal bool
	hideDotfiles    bool
}

// Option configures a Lister.
type Option func(*Lister)

// WithDirReader sets the directory reader.
func WithDirReader(r DirReader) Option {
	return func(l *Lister) {
		l.reader = r
	}
}

// WithLogger sets the logger used for dropped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lister) {
		l.logger = logger
	}
}

// RejectTraversal makes List refuse relative paths with ".." segments.
func RejectTraversal(enabled bool) Option {
	return func(l *Lister) {
		l.rejectTraversal = enabled
	}
}

// HideDotfiles makes List leave out entries whose name starts with "."
// unless a call asks for them with ShowHidden.
func HideDotfiles(enabled bool) Option {
	return func(l *Lister) {
		l.hideDotfiles = enabled
	}
}

// ListOption adjusts a single List call.
type ListOption func(*listConfig)

type listConfig struct {
	hideDotfiles bool
}

// ShowHidden overrides the lister's hidden filter for one call.
func ShowHidden(show bool) ListOption {
	return func(c *listConfig) {
		c.hideDotfiles = !show
	}
}

// NewLister creates a Lister reading from the local filesystem by default.
func NewLister(opts ...Option) *Lister {
	l := &Lister{
		reader: OSDirReader{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Target returns the directory List reads for the given root and relative path.
func Target(root, rel string) string {
	return root + Separator + rel
}

// List enumerates the directory rel below root.
//
// The returned error is always domain.ErrDirectoryUnreadable or, with
// traversal rejection enabled, domain.ErrPathRejected.
func (l *Lister) List(root, rel string, opts ...ListOption) (*Listing, error) {
	cfg := listConfig{hideDotfiles: l.hideDotfiles}
	for _, opt := range opts {
		opt(&cfg)
	}

	if l.rejectTraversal && hasDotDot(rel) {
		return nil, domain.ErrPathRejected.WithDetails(strconv.Quote(rel))
	}

	target := Target(root, rel)
	dirEntries, err := l.reader.ReadDir(target)
	if err != nil && len(dirEntries) == 0 {
		return nil, domain.ErrDirectoryUnreadable.WithDetails(target).Wrap(err)
	}

	listing := &Listing{
		Entries: make([]domain.Entry, 0, len(dirEntries)),
	}
	if err != nil {
		listing.Interrupted = err
		l.logger.Error("directory enumeration interrupted",
			"dir", target,
			"read", len(dirEntries),
			"error", err,
		)
	}

	for _, de := range dirEntries {
		if cfg.hideDotfiles && strings.HasPrefix(de.Name(), ".") {
			listing.Hidden++
			continue
		}
		entry, err := toEntry(de)
		if err != nil {
			l.drop(listing, target, de.Name(), err)
			continue
		}
		listing.Entries = append(listing.Entries, entry)
	}

	return listing, nil
}

func (l *Lister) drop(listing *Listing, dir, name string, cause error) {
	err := domain.ErrEntryUnreadable.Wrap(cause)
	listing.Failures = append(listing.Failures, EntryFailure{Name: name, Err: err})
	l.logger.Error("dropping directory entry",
		"dir", dir,
		"entry", strconv.Quote(name),
		"error", err,
	)
}

func toEntry(de fs.DirEntry) (domain.Entry, error) {
	name := de.Name()
	if !utf8.ValidString(name) {
		return domain.Entry{}, fmt.Errorf("name %q is not valid UTF-8", name)
	}

	info, err := de.Info()
	if err != nil {
		return domain.Entry{}, fmt.Errorf("stat %s: %w", name, err)
	}

	// Pre-epoch timestamps clamp to zero.
	modified := info.ModTime().Unix()
	if modified < 0 {
		modified = 0
	}
	size := info.Size()
	if size < 0 {
		size = 0
	}

	return domain.Entry{
		Name:     name,
		Size:     size,
		IsDir:    info.IsDir(),
		Modified: modified,
	}, nil
}

// hasDotDot reports whether any slash or backslash separated segment is "..".
func hasDotDot(rel string) bool {
	for _, seg := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
