package memory

import (
	"context"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

type ResetRequestRepository struct {
	s *Store
}

func (r *ResetRequestRepository) Create(_ context.Context, req *models.ResetPasswordRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.resets[req.Token]; ok {
		return common.ErrResetTokenExists
	}
	req.ID = r.s.newID()
	req.CreatedAt = r.s.now()
	c := *req
	r.s.resets[req.Token] = &c
	return nil
}

func (r *ResetRequestRepository) Find(_ context.Context, token string) (*models.ResetPasswordRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.resets[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *req
	return &c, nil
}

func (r *ResetRequestRepository) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.resets[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.resets, token)
	return nil
}
