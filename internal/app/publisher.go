package app

import (
	"context"

	"productivity-chatbot/internal/model"
	"productivity-chatbot/internal/repository"
)

// MessagePublisher hands a message off for persistence. The rabbitmq
// publisher does so asynchronously, RepositoryPublisher writes inline.
type MessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type RepositoryPublisher struct {
	repo *repository.MessageRepository
}

func NewRepositoryPublisher(repo *repository.MessageRepository) *RepositoryPublisher {
	return &RepositoryPublisher{repo: repo}
}

func (p *RepositoryPublisher) Publish(_ context.Context, msg model.Message) error {
	return p.repo.Create(&msg)
}
