package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
	"github.com/locvowork/supplier_fte_dashboard/pkg/pdftable"
	"github.com/locvowork/supplier_fte_dashboard/pkg/simpleexcel"
)

// SessionService drives both dashboard workflows over per-session state.
// Every call re-derives its view from the stored uploads.
type SessionService struct {
	repo    domain.SessionRepository
	opts    domain.AnalysisOptions
	pdfOpts []pdftable.Option
}

// NewSessionService creates a new SessionService instance
func NewSessionService(repo domain.SessionRepository, opts domain.AnalysisOptions, pdfOpts ...pdftable.Option) *SessionService {
	return &SessionService{
		repo:    repo,
		opts:    opts,
		pdfOpts: pdfOpts,
	}
}

// ==================== Session ====================

// Resolve returns the session with the given id, or a fresh one when the id
// is empty or unknown.
func (s *SessionService) Resolve(ctx context.Context, id string) (domain.Session, error) {
	if id != "" {
		sess, err := s.repo.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, domain.ErrNoSession) {
			return domain.Session{}, err
		}
	}

	sess, err := s.repo.Create(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	logger.InfoLog(ctx, "Session %s started", sess.ID)
	return sess, nil
}

// End discards the session and everything uploaded in it.
func (s *SessionService) End(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Session %s ended", id)
	return nil
}

// Options returns the analysis options with an optional status column
// override.
func (s *SessionService) Options(statusColumn string) domain.AnalysisOptions {
	opts := s.opts
	opts.InScope = append([]string(nil), s.opts.InScope...)
	if col := strings.TrimSpace(statusColumn); col != "" {
		opts.StatusColumn = col
	}
	return opts
}

// ==================== Editor ====================

// UploadEditor replaces the editor workbook and selects its first sheet.
func (s *SessionService) UploadEditor(ctx context.Context, id, fileName string, r io.Reader) (domain.EditorView, error) {
	wb, err := simpleexcel.ReadWorkbook(r)
	if err != nil {
		return domain.EditorView{}, err
	}

	sess, err := s.repo.Update(ctx, id, func(sess *domain.Session) error {
		sess.Editor = domain.EditorState{FileName: fileName, Workbook: wb}
		if first, err := wb.First(); err == nil {
			sess.Editor.SelectedSheet = first.Name
		}
		return nil
	})
	if err != nil {
		return domain.EditorView{}, err
	}

	logger.InfoLog(ctx, "Editor workbook %q loaded with %d sheets", fileName, len(wb.Sheets))
	return DeriveEditorView(sess.Editor)
}

// Editor returns the current editor view.
func (s *SessionService) Editor(ctx context.Context, id string) (domain.EditorView, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.EditorView{}, err
	}
	return DeriveEditorView(sess.Editor)
}

// SelectSheet switches the editor to another sheet. Unsaved edits of a
// different sheet are dropped.
func (s *SessionService) SelectSheet(ctx context.Context, id, sheet string) (domain.EditorView, error) {
	sess, err := s.repo.Update(ctx, id, func(sess *domain.Session) error {
		return selectSheet(&sess.Editor, sheet)
	})
	if err != nil {
		return domain.EditorView{}, err
	}
	return DeriveEditorView(sess.Editor)
}

// UpdateSheet stores the edited grid of sheet.
func (s *SessionService) UpdateSheet(ctx context.Context, id, sheet string, upd domain.GridUpdate) (domain.EditorView, error) {
	sess, err := s.repo.Update(ctx, id, func(sess *domain.Session) error {
		if err := selectSheet(&sess.Editor, sheet); err != nil {
			return err
		}
		base, err := lookupSheet(sess.Editor.Workbook, sheet)
		if err != nil {
			return err
		}
		edited, err := ApplyGridUpdate(base, upd)
		if err != nil {
			return err
		}
		sess.Editor.Edited = edited
		return nil
	})
	if err != nil {
		return domain.EditorView{}, err
	}

	logger.DebugLog(ctx, "Sheet %q edited: %d rows", sheet, sess.Editor.Edited.Len())
	return DeriveEditorView(sess.Editor)
}

func selectSheet(state *domain.EditorState, sheet string) error {
	if !state.Loaded() {
		return domain.ErrNoUpload
	}
	if _, err := lookupSheet(state.Workbook, sheet); err != nil {
		return err
	}
	if state.SelectedSheet != sheet {
		state.SelectedSheet = sheet
		state.Edited = nil
	}
	return nil
}

// ExportEditor writes every sheet of the uploaded workbook with the edited
// sheet replaced.
func (s *SessionService) ExportEditor(ctx context.Context, id, fileName string) (domain.Document, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	wb, err := EditedWorkbook(sess.Editor)
	if err != nil {
		return domain.Document{}, err
	}
	data, err := simpleexcel.WorkbookBytes(wb)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to write edited workbook: %w", err)
	}
	return domain.Document{
		Name:        EnsureExtension(fileName, ".xlsx", DefaultEditorFileName),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

// ==================== Consolidated ====================

// UploadConsolidated stores the first sheet of a consolidated report and
// returns its analysis. The upload is kept even when validation fails.
func (s *SessionService) UploadConsolidated(ctx context.Context, id, fileName string, r io.Reader, statusColumn string) (domain.ConsolidatedView, error) {
	sheet, err := simpleexcel.ReadFirstSheet(r)
	if err != nil {
		return domain.ConsolidatedView{}, err
	}

	sess, err := s.repo.Update(ctx, id, func(sess *domain.Session) error {
		sess.Consolidated = domain.ConsolidatedState{FileName: fileName, Sheet: sheet}
		return nil
	})
	if err != nil {
		return domain.ConsolidatedView{}, err
	}

	logger.InfoLog(ctx, "Consolidated report %q loaded: sheet %q, %d rows", fileName, sheet.Name, sheet.Table.Len())
	view, _, err := DeriveConsolidatedView(sess.Consolidated, s.Options(statusColumn))
	return view, err
}

// Consolidated returns the current analysis view.
func (s *SessionService) Consolidated(ctx context.Context, id, statusColumn string) (domain.ConsolidatedView, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.ConsolidatedView{}, err
	}
	view, _, err := DeriveConsolidatedView(sess.Consolidated, s.Options(statusColumn))
	return view, err
}

// ExportConsolidated renders one of the consolidated documents.
func (s *SessionService) ExportConsolidated(ctx context.Context, id string, kind domain.ExportKind, fileName, statusColumn string) (domain.Document, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	_, analysis, err := DeriveConsolidatedView(sess.Consolidated, s.Options(statusColumn))
	if err != nil {
		return domain.Document{}, err
	}

	doc, err := ConsolidatedDocument(analysis, kind, fileName, s.pdfOpts...)
	if err != nil {
		return domain.Document{}, err
	}
	logger.InfoLog(ctx, "Export %s generated: %s (%d bytes)", kind, doc.Name, len(doc.Data))
	return doc, nil
}
