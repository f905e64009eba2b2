package service

import (
	"context"
	"errors"

	"contractpay/internal/model"
)

var ErrTemplateNotFound = errors.New("template not found")

// TemplateStore is the template persistence the service needs.
type TemplateStore interface {
	TemplateCounter
	Insert(ctx context.Context, t *model.ContractTemplate) error
	ListVisible(ctx context.Context, userID int) ([]model.ContractTemplate, error)
	Delete(ctx context.Context, id int) error
}

type TemplateService struct {
	templates TemplateStore
}

func NewTemplateService(templates TemplateStore) *TemplateService {
	return &TemplateService{templates: templates}
}

type CreateTemplateInput struct {
	UserID      int
	Title       string
	Description string
	Content     string
	Category    string
	IsPublic    bool
}

func (s *TemplateService) Create(ctx context.Context, in CreateTemplateInput) (*model.ContractTemplate, error) {
	t := &model.ContractTemplate{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Category:    in.Category,
		IsPublic:    in.IsPublic,
	}
	if err := s.templates.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the templates a user can see: their own plus public ones.
func (s *TemplateService) List(ctx context.Context, userID int) ([]model.ContractTemplate, error) {
	return s.templates.ListVisible(ctx, userID)
}

func (s *TemplateService) Delete(ctx context.Context, id int) error {
	return s.templates.Delete(ctx, id)
}
