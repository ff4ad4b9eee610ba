// Package document glues patch engine and revision store together.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docconv/api"
	"docconv/common"
	"docconv/patch"
	"docconv/state"
	"docconv/store"
)

var ErrNoDocument = errors.New("document id is required")

type Service struct {
	engine *patch.Engine
	store  store.Store
	log    *zap.Logger
}

func NewService(engine *patch.Engine, st store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{engine: engine, store: st, log: log.Named("document")}
}

// ApplyPatch applies patch to content and records revision. Invalid patch
// produces error and no revision. When revision cannot be stored updated
// document is still returned with RevisionCreated unset.
func (s *Service) ApplyPatch(ctx context.Context, docID, content string, p *patch.DocumentPatch) (*api.PatchResponse, error) {
	if docID == "" {
		return nil, ErrNoDocument
	}
	log := state.LoggerFromContext(ctx, s.log).With(zap.String("document", docID))

	updated, err := s.engine.Apply(content, p)
	if err != nil {
		return nil, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	resp := &api.PatchResponse{Document: updated}
	id, err := s.store.Append(ctx, store.Revision{
		DocumentID: docID,
		Kind:       common.RevisionKindPatch,
		Patch:      p,
		Content:    updated,
	})
	if err != nil {
		log.Error("Unable to record revision, returning unsaved document", zap.Error(err))
		return resp, nil
	}
	resp.RevisionCreated, resp.RevisionID = true, id

	log.Info("Patch applied", zap.Stringer("kind", p.Kind), zap.Int("changes", len(p.Changes)), zap.String("revision", id))
	return resp, nil
}

// Save records manual revision with content as is.
func (s *Service) Save(ctx context.Context, docID, content string) (string, error) {
	if docID == "" {
		return "", ErrNoDocument
	}
	id, err := s.store.Append(ctx, store.Revision{
		DocumentID: docID,
		Kind:       common.RevisionKindManual,
		Content:    content,
	})
	if err != nil {
		return "", fmt.Errorf("unable to save document %s: %w", docID, err)
	}
	state.LoggerFromContext(ctx, s.log).Info("Document saved", zap.String("document", docID), zap.String("revision", id))
	return id, nil
}
