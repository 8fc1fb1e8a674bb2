// Package library keeps the uploaded strategies, the current selection
// and saved portfolios, mirrored to a Store.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/stratfolio/ingest"
	"github.com/rustyeddy/stratfolio/pkg/id"
	"github.com/rustyeddy/stratfolio/pkg/logger"
	"github.com/rustyeddy/stratfolio/strategy"
)

// ErrNotFound is returned for unknown upload, strategy or portfolio ids.
var ErrNotFound = errors.New("not found")

// ErrNameRequired is returned when a portfolio name is blank.
var ErrNameRequired = errors.New("portfolio name is required")

// Library is safe for concurrent use. Every accessor returns copies.
type Library struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
	newID func() string

	mu         sync.RWMutex
	uploads    []ingest.ParsedFile
	selected   map[string]bool
	portfolios []strategy.Portfolio
}

// Option configures a Library.
type Option func(*Library)

func WithLogger(l *logger.Logger) Option    { return func(lib *Library) { lib.log = l } }
func WithClock(now func() time.Time) Option { return func(lib *Library) { lib.now = now } }
func WithIDFunc(newID func() string) Option { return func(lib *Library) { lib.newID = newID } }

// New returns an empty library over store. Call Load to read what the
// store already holds.
func New(store Store, opts ...Option) *Library {
	lib := &Library{
		store:    store,
		log:      logger.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return id.WithPrefix("portfolio") },
		selected: map[string]bool{},
	}
	for _, o := range opts {
		o(lib)
	}
	return lib
}

// Load replaces the in-memory state with the store's contents and clears
// the selection.
func (l *Library) Load(ctx context.Context) error {
	uploads, err := l.store.LoadUploads(ctx)
	if err != nil {
		return fmt.Errorf("load uploads: %w", err)
	}
	portfolios, err := l.store.LoadPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("load portfolios: %w", err)
	}

	l.mu.Lock()
	l.uploads = uploads
	l.portfolios = portfolios
	l.selected = map[string]bool{}
	l.mu.Unlock()

	l.log.WithFields(map[string]interface{}{
		"uploads":    len(uploads),
		"portfolios": len(portfolios),
	}).Info("library loaded")
	return nil
}

// AddUpload stores a parsed file. An earlier upload with the same name is
// replaced and its records leave the selection.
func (l *Library) AddUpload(ctx context.Context, f ingest.ParsedFile) error {
	f.Strategies = strategy.CloneAll(f.Strategies)
	if err := l.store.SaveUpload(ctx, f); err != nil {
		return fmt.Errorf("save upload %q: %w", f.Name, err)
	}

	l.mu.Lock()
	l.dropUpload(f.Name)
	l.uploads = append(l.uploads, f)
	l.mu.Unlock()

	l.log.WithField("upload", f.Name).WithField("strategies", len(f.Strategies)).Info("upload added")
	return nil
}

// RemoveUpload drops an upload, its records, and their selection.
func (l *Library) RemoveUpload(ctx context.Context, name string) error {
	l.mu.RLock()
	found := l.findUpload(name) >= 0
	l.mu.RUnlock()
	if !found {
		return fmt.Errorf("upload %q: %w", name, ErrNotFound)
	}

	if err := l.store.DeleteUpload(ctx, name); err != nil {
		return fmt.Errorf("delete upload %q: %w", name, err)
	}

	l.mu.Lock()
	l.dropUpload(name)
	l.mu.Unlock()

	l.log.WithField("upload", name).Info("upload removed")
	return nil
}

// dropUpload must be called with mu held.
func (l *Library) dropUpload(name string) {
	i := l.findUpload(name)
	if i < 0 {
		return
	}
	for _, s := range l.uploads[i].Strategies {
		delete(l.selected, s.ID)
	}
	l.uploads = append(l.uploads[:i:i], l.uploads[i+1:]...)
}

func (l *Library) findUpload(name string) int {
	for i, u := range l.uploads {
		if u.Name == name {
			return i
		}
	}
	return -1
}

// Uploads lists upload names with their record counts, oldest first.
func (l *Library) Uploads() []ingest.ParsedFile {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ingest.ParsedFile, len(l.uploads))
	for i, u := range l.uploads {
		u.Strategies = strategy.CloneAll(u.Strategies)
		out[i] = u
	}
	return out
}

// Strategies returns every record in upload order.
func (l *Library) Strategies() []strategy.Strategy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(func(strategy.Strategy) bool { return true })
}

// collect must be called with mu held.
func (l *Library) collect(keep func(strategy.Strategy) bool) []strategy.Strategy {
	out := []strategy.Strategy{}
	for _, u := range l.uploads {
		for _, s := range u.Strategies {
			if keep(s) {
				out = append(out, s.Clone())
			}
		}
	}
	return out
}

// Strategy looks a record up by id.
func (l *Library) Strategy(sid string) (strategy.Strategy, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, u := range l.uploads {
		for _, s := range u.Strategies {
			if s.ID == sid {
				return s.Clone(), nil
			}
		}
	}
	return strategy.Strategy{}, fmt.Errorf("strategy %q: %w", sid, ErrNotFound)
}

// Lookup returns the records with the given ids, in the order given.
func (l *Library) Lookup(ids []string) ([]strategy.Strategy, error) {
	out := make([]strategy.Strategy, 0, len(ids))
	for _, sid := range ids {
		s, err := l.Strategy(sid)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Filtered returns the records matching f in upload order.
func (l *Library) Filtered(f strategy.Filter) []strategy.Strategy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(f.Match)
}

// Select adds ids to the selection. Unknown ids are rejected and nothing
// changes.
func (l *Library) Select(ids ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.known(ids); err != nil {
		return err
	}
	for _, sid := range ids {
		l.selected[sid] = true
	}
	return nil
}

// SetSelection replaces the selection.
func (l *Library) SetSelection(ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.known(ids); err != nil {
		return err
	}
	l.selected = make(map[string]bool, len(ids))
	for _, sid := range ids {
		l.selected[sid] = true
	}
	return nil
}

// known must be called with mu held.
func (l *Library) known(ids []string) error {
	have := map[string]bool{}
	for _, u := range l.uploads {
		for _, s := range u.Strategies {
			have[s.ID] = true
		}
	}
	for _, sid := range ids {
		if !have[sid] {
			return fmt.Errorf("strategy %q: %w", sid, ErrNotFound)
		}
	}
	return nil
}

func (l *Library) Deselect(sid string) {
	l.mu.Lock()
	delete(l.selected, sid)
	l.mu.Unlock()
}

func (l *Library) ClearSelection() {
	l.mu.Lock()
	l.selected = map[string]bool{}
	l.mu.Unlock()
}

// Selected returns the selected records in upload order.
func (l *Library) Selected() []strategy.Strategy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(func(s strategy.Strategy) bool { return l.selected[s.ID] })
}

// CreatePortfolio snapshots the current selection under name.
func (l *Library) CreatePortfolio(ctx context.Context, name string) (strategy.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return strategy.Portfolio{}, ErrNameRequired
	}

	return l.snapshot(ctx, name, l.Selected())
}

// CreatePortfolioFrom snapshots the given records without touching the
// selection.
func (l *Library) CreatePortfolioFrom(ctx context.Context, name string, ids []string) (strategy.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return strategy.Portfolio{}, ErrNameRequired
	}
	members, err := l.Lookup(ids)
	if err != nil {
		return strategy.Portfolio{}, err
	}
	return l.snapshot(ctx, name, members)
}

func (l *Library) snapshot(ctx context.Context, name string, members []strategy.Strategy) (strategy.Portfolio, error) {
	if len(members) == 0 {
		return strategy.Portfolio{}, strategy.ErrEmptyPortfolio
	}
	p, err := strategy.NewPortfolio(l.newID(), name, members, l.now())
	if err != nil {
		return strategy.Portfolio{}, err
	}
	if err := l.store.SavePortfolio(ctx, p); err != nil {
		return strategy.Portfolio{}, fmt.Errorf("save portfolio %q: %w", name, err)
	}

	l.mu.Lock()
	l.portfolios = append(l.portfolios, p)
	l.mu.Unlock()

	l.log.WithFields(map[string]interface{}{
		"portfolio": p.ID,
		"name":      p.Name,
		"members":   len(p.Members),
	}).Info("portfolio created")
	return clonePortfolio(p), nil
}

// RenamePortfolio changes a portfolio's name. Members are untouched.
func (l *Library) RenamePortfolio(ctx context.Context, pid, name string) (strategy.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return strategy.Portfolio{}, ErrNameRequired
	}

	p, err := l.Portfolio(pid)
	if err != nil {
		return strategy.Portfolio{}, err
	}
	p.Name = name
	if err := l.store.SavePortfolio(ctx, p); err != nil {
		return strategy.Portfolio{}, fmt.Errorf("save portfolio %q: %w", pid, err)
	}

	l.mu.Lock()
	for i := range l.portfolios {
		if l.portfolios[i].ID == pid {
			l.portfolios[i].Name = name
		}
	}
	l.mu.Unlock()
	return p, nil
}

// Portfolios returns every saved portfolio, oldest first.
func (l *Library) Portfolios() []strategy.Portfolio {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]strategy.Portfolio, len(l.portfolios))
	for i, p := range l.portfolios {
		out[i] = clonePortfolio(p)
	}
	return out
}

func (l *Library) Portfolio(pid string) (strategy.Portfolio, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.portfolios {
		if p.ID == pid {
			return clonePortfolio(p), nil
		}
	}
	return strategy.Portfolio{}, fmt.Errorf("portfolio %q: %w", pid, ErrNotFound)
}

func (l *Library) DeletePortfolio(ctx context.Context, pid string) error {
	if _, err := l.Portfolio(pid); err != nil {
		return err
	}
	if err := l.store.DeletePortfolio(ctx, pid); err != nil {
		return fmt.Errorf("delete portfolio %q: %w", pid, err)
	}

	l.mu.Lock()
	for i, p := range l.portfolios {
		if p.ID == pid {
			l.portfolios = append(l.portfolios[:i:i], l.portfolios[i+1:]...)
			break
		}
	}
	l.mu.Unlock()

	l.log.WithField("portfolio", pid).Info("portfolio deleted")
	return nil
}

func clonePortfolio(p strategy.Portfolio) strategy.Portfolio {
	p.Members = strategy.CloneAll(p.Members)
	return p
}

// Close closes the underlying store.
func (l *Library) Close() error {
	return l.store.Close()
}
