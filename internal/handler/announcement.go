package handler

import (
	"context"
	"errors"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
	"github.com/Anuragsahu418/Educhat/internal/store"
)

type CreateAnnouncementRequest struct {
	Text  string
	Files []string
}

type AnnouncementHandler struct {
	announcements store.AnnouncementStore
}

func NewAnnouncementHandler(
	announcements store.AnnouncementStore,
) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcements: announcements,
	}
}

// Create publishes an announcement. Teachers and admins only.
func (h *AnnouncementHandler) Create(ctx context.Context, req CreateAnnouncementRequest) (store.Announcement, error) {
	user, err := authUser(ctx)
	if err != nil {
		return store.Announcement{}, err
	}

	if !user.Role.CanAnnounce() {
		return store.Announcement{}, ierr.New(ierr.ErrorCodePermissionDenied,
			errors.New("only teachers can create announcements"))
	}

	if req.Text == "" && len(req.Files) == 0 {
		return store.Announcement{}, ierr.New(ierr.ErrorCodeInvalidArgument,
			errors.New("announcement must have text or files"))
	}

	return h.announcements.Create(ctx, store.CreateAnnouncementRequest{
		SenderID: user.ID,
		Text:     req.Text,
		Files:    req.Files,
	})
}

func (h *AnnouncementHandler) List(ctx context.Context) ([]store.Announcement, error) {
	_, err := authUser(ctx)
	if err != nil {
		return nil, err
	}

	return h.announcements.List(ctx)
}
