package geminiservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"Glupulse_MealPlan/internal/mealsafety"
	"golang.org/x/sync/errgroup"
)

// ErrLibraryLoaded is returned by Load when documents are already present; use Reload.
var ErrLibraryLoaded = errors.New("reference library already loaded")

// ReferenceDocument is an uploaded guideline file the model can read.
type ReferenceDocument struct {
	Principle   string `json:"principle"`
	DisplayName string `json:"display_name"`
	URI         string `json:"uri"`
	MIMEType    string `json:"mime_type"`
}

// ReferenceSource points at a local guideline document for one dietary principle.
type ReferenceSource struct {
	Principle string
	Path      string
	MIMEType  string
}

// Uploader stores a document where the model can reach it.
type Uploader interface {
	UploadReference(ctx context.Context, displayName string, r io.Reader, mimeType string) (ReferenceDocument, error)
}

// ReferenceLibrary holds the uploaded guideline documents keyed by principle.
// It is created and loaded by the caller; nothing is uploaded lazily.
type ReferenceLibrary struct {
	mu       sync.RWMutex
	docs     map[string]ReferenceDocument
	loadedAt time.Time
}

func NewReferenceLibrary() *ReferenceLibrary {
	return &ReferenceLibrary{docs: map[string]ReferenceDocument{}}
}

// Load uploads every source. It fails if the library already holds documents.
func (l *ReferenceLibrary) Load(ctx context.Context, up Uploader, sources []ReferenceSource) error {
	if l.Loaded() {
		return ErrLibraryLoaded
	}
	return l.Reload(ctx, up, sources)
}

// Reload uploads every source and swaps the documents in only if all uploads succeed.
func (l *ReferenceLibrary) Reload(ctx context.Context, up Uploader, sources []ReferenceSource) error {
	docs := make([]ReferenceDocument, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			f, err := os.Open(src.Path)
			if err != nil {
				return fmt.Errorf("failed to open reference %s: %w", src.Principle, err)
			}
			defer f.Close()

			mimeType := src.MIMEType
			if mimeType == "" {
				mimeType = "application/pdf"
			}

			doc, err := up.UploadReference(gctx, filepath.Base(src.Path), f, mimeType)
			if err != nil {
				return err
			}
			doc.Principle = src.Principle
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	next := make(map[string]ReferenceDocument, len(docs))
	for _, d := range docs {
		next[d.Principle] = d
	}

	l.mu.Lock()
	l.docs = next
	l.loadedAt = time.Now()
	l.mu.Unlock()
	return nil
}

// Loaded reports whether at least one document is available.
func (l *ReferenceLibrary) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs) > 0
}

// LoadedAt is the time of the last successful load.
func (l *ReferenceLibrary) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

// ForDiet returns the documents matching the diet's principle: LFV for vegan and
// vegetarian, LCHF for meat-based and all-inclusive. Other diets get none.
func (l *ReferenceLibrary) ForDiet(diet mealsafety.DietType) []ReferenceDocument {
	if l == nil {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	doc, ok := l.docs[mealsafety.Principle(diet)]
	if !ok {
		return nil
	}
	return []ReferenceDocument{doc}
}
