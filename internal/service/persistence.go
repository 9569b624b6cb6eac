package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"site-builder-backend/internal/background"
	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/events"
	"site-builder-backend/internal/models"
	"site-builder-backend/pkg/logger"
)

// JobHandle tracks a scheduled save or publish.
type JobHandle struct {
	Name   string
	PageID string
	done   chan error
}

func newJobHandle(name, pageID string) *JobHandle {
	return &JobHandle{Name: name, PageID: pageID, done: make(chan error, 1)}
}

func (h *JobHandle) finish(err error) {
	h.done <- err
}

// Wait blocks until the job finishes or ctx is done.
func (h *JobHandle) Wait(ctx context.Context) error {
	select {
	case err := <-h.done:
		h.done <- err
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pageRecord(page *models.PageConfig, document []byte) *models.PageRecord {
	return &models.PageRecord{
		ID:       page.ID,
		Name:     page.Name,
		Title:    page.Metadata.Title,
		Document: string(document),
	}
}

// snapshot captures the page of a session together with its serialised
// configuration.
func (s *BuilderService) snapshot(id string) (*Session, *models.PageConfig, []byte, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, nil, nil, err
	}
	page := session.Store.State().Page
	if page == nil {
		return nil, nil, nil, models.ErrNoPage
	}
	document, err := codec.ExportPageConfig(page)
	if err != nil {
		return nil, nil, nil, err
	}
	return session, page, document, nil
}

func (s *BuilderService) schedule(job background.Job) error {
	if err := s.jobs.ScheduleUnique(job); err != nil {
		if errors.Is(err, background.ErrJobAlreadyScheduled) {
			return ErrJobPending
		}
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}
	return nil
}

// Save persists the current page of a session in the background. The
// repository and the backup store are written concurrently; once both
// succeed the session is marked clean unless it was edited meanwhile.
func (s *BuilderService) Save(id string) (*JobHandle, error) {
	session, page, document, err := s.snapshot(id)
	if err != nil {
		return nil, err
	}

	handle := newJobHandle("save:"+page.ID, page.ID)
	job := background.Job{
		Name:        handle.Name,
		Kind:        "save",
		Timeout:     s.config.JobTimeout,
		RetryPolicy: background.RetryPolicy{MaxRetries: s.config.JobRetries},
		Run: func(ctx context.Context) error {
			return s.persist(ctx, page, document)
		},
		OnFinish: func(err error) {
			if err == nil {
				s.commit(session, page)
			}
			handle.finish(err)
		},
	}

	if err := s.schedule(job); err != nil {
		return nil, err
	}
	return handle, nil
}

func (s *BuilderService) persist(ctx context.Context, page *models.PageConfig, document []byte) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := s.repo.Save(ctx, pageRecord(page, document)); err != nil {
			return fmt.Errorf("failed to save page %s: %w", page.ID, err)
		}
		return nil
	})

	if s.backups != nil {
		group.Go(func() error {
			if err := s.backups.Set(ctx, page.ID, string(document)); err != nil {
				return fmt.Errorf("failed to back up page %s: %w", page.ID, err)
			}
			return nil
		})
	}

	return group.Wait()
}

func (s *BuilderService) commit(session *Session, page *models.PageConfig) {
	if session.Store.CommitIfUnchanged(page) {
		return
	}
	logger.Debug("Page changed while saving, keeping dirty flag", map[string]interface{}{
		"session_id": session.ID,
		"page_id":    page.ID,
	})
}

// Publish saves the current page, marks it published and announces it.
func (s *BuilderService) Publish(id string) (*JobHandle, error) {
	session, page, document, err := s.snapshot(id)
	if err != nil {
		return nil, err
	}

	handle := newJobHandle("publish:"+page.ID, page.ID)
	job := background.Job{
		Name:        handle.Name,
		Kind:        "publish",
		Timeout:     s.config.JobTimeout,
		RetryPolicy: background.RetryPolicy{MaxRetries: s.config.JobRetries},
		Run: func(ctx context.Context) error {
			if err := s.persist(ctx, page, document); err != nil {
				return err
			}

			at := s.now()
			if err := s.repo.MarkPublished(ctx, page.ID, at); err != nil {
				return fmt.Errorf("failed to mark page %s published: %w", page.ID, err)
			}

			if s.publisher == nil {
				return nil
			}
			if err := s.publisher.Publish(ctx, events.NewPagePublished(page, document, at)); err != nil {
				return fmt.Errorf("failed to announce page %s: %w", page.ID, err)
			}
			return nil
		},
		OnFinish: func(err error) {
			if err == nil {
				s.commit(session, page)
				logger.Info("Page published", map[string]interface{}{
					"session_id": session.ID,
					"page_id":    page.ID,
				})
			}
			handle.finish(err)
		},
	}

	if err := s.schedule(job); err != nil {
		return nil, err
	}
	return handle, nil
}
